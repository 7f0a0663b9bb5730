package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	claims := Claims{UserID: "u1", Username: "Anna", Email: "anna@example.com"}
	claims.Issuer = "idp"

	token, err := GenerateToken(claims, "secret", time.Hour)
	require.NoError(t, err)

	parsed, err := ValidateToken(token, "secret", "idp")
	require.NoError(t, err)
	assert.Equal(t, "u1", parsed.UserID)
	assert.Equal(t, "Anna", parsed.Username)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(Claims{UserID: "u1"}, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other", "")
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := GenerateToken(Claims{UserID: "u1"}, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret", "")
	assert.Error(t, err)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	claims := Claims{UserID: "u1"}
	claims.Issuer = "someone-else"
	token, err := GenerateToken(claims, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret", "idp")
	assert.Error(t, err)
}

func TestValidateRejectsMissingUserID(t *testing.T) {
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ValidateToken(signed, "secret", "")
	assert.Error(t, err)
}
