package token_adapter

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("flask-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken("ava-42", "7")
	require.NoError(t, err)

	sessionID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ava-42", sessionID)
}

func TestTokenRejectsForeignSignature(t *testing.T) {
	a, _ := NewTokenService("secret-a", time.Hour)
	b, _ := NewTokenService("secret-b", time.Hour)

	token, err := a.GenerateToken("ava-42", "7")
	require.NoError(t, err)

	_, err = b.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = a.ValidateToken("garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenExpired(t *testing.T) {
	svc, _ := NewTokenService("secret", time.Hour)

	claims := &sessionClaims{
		SessionID: "ava-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenWithoutTTL(t *testing.T) {
	svc, _ := NewTokenService("secret", 0)
	token, err := svc.GenerateToken("ava-1", "7")
	require.NoError(t, err)

	id, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ava-1", id)
}

func TestNewTokenServiceRequiresKey(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.Error(t, err)
}
