package security

import (
	"testing"
	"time"
)

func TestCSRFTokenRoundTrip(t *testing.T) {
	gen := NewCSRFGenerator("test-secret")

	token, err := gen.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	if !gen.ValidateToken("session-1", token) {
		t.Error("ValidateToken() rejected its own token")
	}
}

func TestCSRFTokenIsSessionBound(t *testing.T) {
	gen := NewCSRFGenerator("test-secret")
	token, _ := gen.GenerateToken("session-1")

	if gen.ValidateToken("session-2", token) {
		t.Error("token for session-1 validated for session-2")
	}
}

func TestCSRFTokenIsSecretBound(t *testing.T) {
	token, _ := NewCSRFGenerator("secret-a").GenerateToken("session-1")

	if NewCSRFGenerator("secret-b").ValidateToken("session-1", token) {
		t.Error("token validated under a different secret")
	}
}

func TestCSRFTokenRejectsEmptyInputs(t *testing.T) {
	gen := NewCSRFGenerator("test-secret")

	if _, err := gen.GenerateToken(""); err == nil {
		t.Error("GenerateToken accepted an empty session ID")
	}
	if gen.ValidateToken("", "token") {
		t.Error("ValidateToken accepted an empty session ID")
	}
	if gen.ValidateToken("session-1", "") {
		t.Error("ValidateToken accepted an empty token")
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("1.2.3.4") {
			t.Fatalf("request %d denied within the limit", i+1)
		}
	}
	if limiter.Allow("1.2.3.4") {
		t.Error("request over the limit was allowed")
	}

	// Other clients have their own bucket
	if !limiter.Allow("5.6.7.8") {
		t.Error("fresh client was denied")
	}
}
