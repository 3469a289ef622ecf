package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", Claims{Email: "rh@example.com", Role: RoleOperator}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.Email != "rh@example.com" || claims.Role != RoleOperator || claims.Subject != "rh@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := ParseToken("other", token); err == nil {
		t.Fatal("expected wrong secret to fail")
	}
}

func TestExpiredToken(t *testing.T) {
	token, err := GenerateToken("secret", Claims{Email: "rh@example.com"}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestOperatorAuthenticate(t *testing.T) {
	hash, err := HashPassword("s3nha-forte")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	op := Operator{Email: "RH@example.com", PasswordHash: hash}
	if err := op.Authenticate(" rh@example.com ", "s3nha-forte"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := op.Authenticate("rh@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := op.Authenticate("other@example.com", "s3nha-forte"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
