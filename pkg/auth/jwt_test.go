package auth

import (
	"testing"
	"time"
)

func TestSessionRoundTrip(t *testing.T) {
	secret := "test-secret"

	tok, err := NewTenantSession(42, "tenant@example.com", secret, time.Hour)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	claims, err := Parse(tok, secret)
	if err != nil {
		t.Fatalf("failed to parse session: %v", err)
	}
	if claims.Sub != 42 {
		t.Errorf("expected sub 42, got %d", claims.Sub)
	}
	if claims.Role != "tenant" {
		t.Errorf("expected tenant role, got %q", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewLandlordSession(1, "owner@example.com", "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if _, err := Parse(tok, "wrong-secret"); err == nil {
		t.Fatal("expected parse to fail with the wrong secret")
	}
}

func TestParseRejectsExpiredSession(t *testing.T) {
	tok, err := NewLandlordSession(1, "owner@example.com", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if _, err := Parse(tok, "test-secret"); err == nil {
		t.Fatal("expected parse to fail for an expired session")
	}
}
