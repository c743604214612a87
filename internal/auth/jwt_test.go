package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateToken_ReturnsValidToken(t *testing.T) {
	token, err := GenerateToken("test-secret", "cli", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ValidateToken("test-secret", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Client != "cli" {
		t.Errorf("expected client %q, got %q", "cli", claims.Client)
	}
	if claims.ID == "" {
		t.Error("expected token id to be set")
	}
}

func TestGenerateToken_DefaultDuration(t *testing.T) {
	token, err := GenerateToken("test-secret", "cli", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ValidateToken("test-secret", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != DefaultTokenDuration {
		t.Errorf("expected lifetime %v, got %v", DefaultTokenDuration, lifetime)
	}
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	if _, err := GenerateToken("", "cli", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret-one", "cli", time.Hour)

	_, err := ValidateToken("secret-two", token)
	if err == nil {
		t.Error("expected error for wrong secret, got nil")
	}
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	claims := &Claims{
		Client:    "cli",
		TokenType: tokenTypeAPI,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := ValidateToken("test-secret", token); err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestValidateToken_WrongType(t *testing.T) {
	claims := &Claims{
		Client:    "cli",
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	_, err = ValidateToken("test-secret", token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		Client:    "cli",
		TokenType: tokenTypeAPI,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := ValidateToken("test-secret", token); err == nil {
		t.Error("expected error for unsigned token, got nil")
	}
}
