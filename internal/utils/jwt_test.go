// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	userID := uuid.New()
	token, err := GenerateJWT(userID, "glenfoyle", "manufacturer", 1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "glenfoyle", claims.Username)
	assert.Equal(t, "manufacturer", claims.Role)
	assert.Equal(t, "sealtrace", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	SetJWTSecret("secret-one")
	token, err := GenerateJWT(uuid.New(), "user", "consumer", 1)
	require.NoError(t, err)

	SetJWTSecret("secret-two")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTGarbage(t *testing.T) {
	SetJWTSecret("unit-test-secret")
	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	userID := uuid.New()
	token, err := GenerateRefreshToken(userID, 24)
	require.NoError(t, err)

	subject, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)
}

func TestJWTUniqueTokenIDs(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	first, err := GenerateJWT(uuid.New(), "user", "consumer", 1)
	require.NoError(t, err)
	second, err := GenerateJWT(uuid.New(), "user", "consumer", 1)
	require.NoError(t, err)

	firstClaims, err := ValidateJWT(first)
	require.NoError(t, err)
	secondClaims, err := ValidateJWT(second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}
