package token_adapter

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jsamit27/ava/internal/core/domain"
)

const issuer = "ava-lead-assistant"

// TokenService - реализация SessionTokenServicePort на JWT (HS256).
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenService(signingKey string, ttl time.Duration) (*TokenService, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	return &TokenService{signingKey: []byte(signingKey), ttl: ttl}, nil
}

type sessionClaims struct {
	SessionID string `json:"session_id"`
	LeadID    string `json:"lead_id"`
	jwt.RegisteredClaims
}

// GenerateToken подписывает токен с id сессии. ttl <= 0 - токен без срока действия.
func (s *TokenService) GenerateToken(sessionID, leadID string) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		SessionID: sessionID,
		LeadID:    leadID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken возвращает id сессии или domain.ErrTokenInvalid
func (s *TokenService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token expired", domain.ErrTokenInvalid)
		}
		return "", domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.SessionID, nil
}
