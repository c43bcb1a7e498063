package util

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateJWT(t *testing.T) {
	token := signToken(t, "s3cret", &Claims{
		Role: "USER",
		StandardClaims: jwt.StandardClaims{
			Subject:   "user-1",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	})

	claims, err := ValidateJWT(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "USER", claims.Role)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token := signToken(t, "s3cret", &Claims{
		StandardClaims: jwt.StandardClaims{Subject: "user-1", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})

	_, err := ValidateJWT(token, "other")
	assert.Error(t, err)
}

func TestValidateJWTExpired(t *testing.T) {
	token := signToken(t, "s3cret", &Claims{
		StandardClaims: jwt.StandardClaims{Subject: "user-1", ExpiresAt: time.Now().Add(-time.Hour).Unix()},
	})

	_, err := ValidateJWT(token, "s3cret")
	assert.Error(t, err)
}

func TestValidateJWTMissingSubject(t *testing.T) {
	token := signToken(t, "s3cret", &Claims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})

	_, err := ValidateJWT(token, "s3cret")
	assert.Error(t, err)
}
