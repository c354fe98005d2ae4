package service

import (
	"errors"
	"testing"
	"time"
)

func newTokenService(secret string) *AuthService {
	return NewAuthService(nil, 24*time.Hour, secret)
}

func TestResetTokenRoundTrip(t *testing.T) {
	svc := newTokenService("test-secret")

	token, err := svc.generateResetToken(42)
	if err != nil {
		t.Fatalf("generateResetToken() error = %v", err)
	}

	userID, err := svc.parseResetToken(token)
	if err != nil {
		t.Fatalf("parseResetToken() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("parseResetToken() user = %d, want 42", userID)
	}

	if !svc.ValidatePasswordResetToken(token) {
		t.Error("ValidatePasswordResetToken() = false for a fresh token")
	}
}

func TestResetTokenWrongSecret(t *testing.T) {
	token, err := newTokenService("secret-a").generateResetToken(42)
	if err != nil {
		t.Fatalf("generateResetToken() error = %v", err)
	}

	other := newTokenService("secret-b")
	if _, err := other.parseResetToken(token); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("parseResetToken() error = %v, want ErrInvalidResetToken", err)
	}
	if other.ValidatePasswordResetToken(token) {
		t.Error("token validated under a different secret")
	}
}

func TestResetTokenGarbage(t *testing.T) {
	svc := newTokenService("test-secret")

	for _, token := range []string{"", "not-a-jwt", "aaaa.bbbb.cccc"} {
		if _, err := svc.parseResetToken(token); !errors.Is(err, ErrInvalidResetToken) {
			t.Errorf("parseResetToken(%q) error = %v, want ErrInvalidResetToken", token, err)
		}
	}
}
