package utils

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Fatal("matching password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
	if CheckPassword("not-a-hash", "s3cret-pass") {
		t.Fatal("malformed hash accepted")
	}
}

func TestTokenManager(t *testing.T) {
	m := NewTokenManager(AdminConfig{JWTSecret: "k", ExpiryHours: 2})
	now := time.Now()

	token, expiresAt, err := m.Generate("ops", now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := expiresAt.Sub(now); got != 2*time.Hour {
		t.Fatalf("expiry = %v, want 2h", got)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Username != "ops" || claims.Role != RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := m.Validate(token + "x"); err == nil {
		t.Fatal("tampered token accepted")
	}
}

func TestTokenManagerWithoutSecret(t *testing.T) {
	m := NewTokenManager(AdminConfig{})
	if _, _, err := m.Generate("ops", time.Now()); err == nil {
		t.Fatal("expected an error when no secret is configured")
	}
}
