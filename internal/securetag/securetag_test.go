// internal/securetag/securetag_test.go
package securetag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateProducesIndependentHexTokens(t *testing.T) {
	creds, err := Generate()
	assert.NoError(t, err)

	for _, token := range []string{creds.SecretKey, creds.TagID, creds.TamperSeal} {
		assert.Len(t, token, tokenBytes*2)
		assert.NotContains(t, token, delimiter)
	}

	assert.NotEqual(t, creds.SecretKey, creds.TagID)
	assert.NotEqual(t, creds.SecretKey, creds.TamperSeal)
	assert.NotEqual(t, creds.TagID, creds.TamperSeal)
}

func TestGenerateIsUnguessableAcrossCalls(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		creds, err := Generate()
		assert.NoError(t, err)
		assert.False(t, seen[creds.SecretKey], "secret key repeated")
		seen[creds.SecretKey] = true
	}
}

func TestNewProductIDIsDashFree(t *testing.T) {
	for i := 0; i < 50; i++ {
		id, err := NewProductID()
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, QRPrefix))
		assert.NotContains(t, id[len(QRPrefix):], delimiter)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	code := EncodeQR("ST100", "ABCDEF")
	assert.Equal(t, "ST-ST100-ABCDEF", code)

	productID, secretKey, err := DecodeQR(code)
	assert.NoError(t, err)
	assert.Equal(t, "ST100", productID)
	assert.Equal(t, "ABCDEF", secretKey)
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	cases := []string{
		"",
		"ST",
		"ST-",
		"ST-ST100",
		"ST-ST100-",
		"ST--secret",
		"XX-ST100-ABCDEF",
		"ST-ST100-ABC-DEF",
		"not a code at all",
	}

	for _, code := range cases {
		_, _, err := DecodeQR(code)
		assert.ErrorIs(t, err, ErrMalformedCode, "payload %q should be rejected", code)
	}
}
