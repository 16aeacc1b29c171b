package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewTokenManager("test-secret", time.Hour)

	token, err := mgr.Issue("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", id.UserID)
	}
	if id.Email != "alice@example.com" {
		t.Fatalf("expected alice@example.com, got %s", id.Email)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour).Verify(token); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestTokenExpired(t *testing.T) {
	mgr := NewTokenManager("test-secret", -time.Minute)

	token, err := mgr.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := mgr.Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestTokenGarbage(t *testing.T) {
	mgr := NewTokenManager("test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := mgr.Verify(raw); err == nil {
			t.Fatalf("expected failure for %q", raw)
		}
	}
}
