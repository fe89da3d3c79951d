package service

import (
	"errors"
	"testing"
	"time"

	"charchat/internal/domain"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	user := domain.User{ID: "u1", Email: "user@example.com"}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "user@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Subject != "u1" {
		t.Fatalf("expected subject = user id")
	}
}

func TestJWTServiceRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	svc.ttl = -time.Minute

	user := domain.User{ID: "u1", Email: "user@example.com"}
	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := svc.ParseToken(token); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour)
	verifier := NewJWTService("secret-b", time.Hour)

	token, err := issuer.GenerateToken(domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := verifier.ParseToken(token); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWTServiceRejectsGarbage(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	for _, token := range []string{"", "   ", "not-a-token"} {
		if _, err := svc.ParseToken(token); !errors.Is(err, ErrJWTInvalid) {
			t.Fatalf("token %q: expected ErrJWTInvalid, got %v", token, err)
		}
	}
}

func TestJWTServiceEmptySecret(t *testing.T) {
	svc := NewJWTService("", time.Hour)
	if _, err := svc.GenerateToken(domain.User{ID: "u1"}); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWTServiceDefaultTTL(t *testing.T) {
	svc := NewJWTService("secret", 0)
	if svc.ttl != time.Hour {
		t.Fatalf("expected default ttl of one hour, got %v", svc.ttl)
	}
}
