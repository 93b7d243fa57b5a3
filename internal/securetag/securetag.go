// internal/securetag/securetag.go
package securetag

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// QRPrefix is the fixed literal leading every scannable payload.
const QRPrefix = "ST"

const delimiter = "-"

// tokenBytes gives 128 bits of entropy per credential token.
const tokenBytes = 16

var ErrMalformedCode = errors.New("malformed verification code")

// Credentials is the secret bundle issued to a product at creation time.
type Credentials struct {
	SecretKey  string
	TagID      string
	TamperSeal string
}

// Generate draws three independent crypto-random tokens, hex-encoded.
func Generate() (*Credentials, error) {
	secretKey, err := randomToken()
	if err != nil {
		return nil, err
	}

	tagID, err := randomToken()
	if err != nil {
		return nil, err
	}

	tamperSeal, err := randomToken()
	if err != nil {
		return nil, err
	}

	return &Credentials{
		SecretKey:  secretKey,
		TagID:      tagID,
		TamperSeal: tamperSeal,
	}, nil
}

// NewProductID generates a globally unique, dash-free product identifier.
// Dash-free matters: the QR payload is delimiter-joined and must always split
// back into exactly three parts.
func NewProductID() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return QRPrefix + strings.ToUpper(hex.EncodeToString(b)), nil
}

// EncodeQR builds the reversible scannable payload embedded in a 2-D barcode.
func EncodeQR(productID, secretKey string) string {
	return fmt.Sprintf("%s%s%s%s%s", QRPrefix, delimiter, productID, delimiter, secretKey)
}

// DecodeQR reverses EncodeQR. Any payload that does not split into exactly
// three parts with the fixed prefix is rejected before a lookup can happen.
func DecodeQR(code string) (productID, secretKey string, err error) {
	parts := strings.Split(code, delimiter)
	if len(parts) != 3 || parts[0] != QRPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", ErrMalformedCode
	}
	return parts[1], parts[2], nil
}

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
