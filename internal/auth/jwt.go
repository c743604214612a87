package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultTokenDuration = 30 * 24 * time.Hour
	tokenTypeAPI         = "api"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the client a token was minted for, such as "cli" or an
// extension install.
type Claims struct {
	Client    string `json:"client"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateToken mints an API token for client. A zero duration uses
// DefaultTokenDuration.
func GenerateToken(secret, client string, duration time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token secret is required")
	}
	if duration <= 0 {
		duration = DefaultTokenDuration
	}
	now := time.Now()
	claims := &Claims{
		Client:    client,
		TokenType: tokenTypeAPI,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   client,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(secret string, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenTypeAPI {
		return nil, fmt.Errorf("%w: unexpected type %q", ErrInvalidToken, claims.TokenType)
	}
	return claims, nil
}
