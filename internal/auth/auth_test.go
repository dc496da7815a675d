package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)
	tok, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}
	id, err := tokens.Verify(tok)
	if err != nil || id != "user-1" {
		t.Fatalf("Verify = %q, %v", id, err)
	}

	if _, err := NewTokens("other", time.Hour).Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret must be rejected, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	tokens := NewTokens("s3cret", time.Minute)
	issued := time.Now()
	tokens.now = func() time.Time { return issued }
	tok, _ := tokens.Issue("user-1")

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := tokens.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token must be rejected, got %v", err)
	}
}

func TestPasswords(t *testing.T) {
	p := Passwords{Cost: bcrypt.MinCost}
	if _, err := p.Hash("short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	hash, err := p.Hash("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Match(hash, "correct horse") || p.Match(hash, "wrong horse") {
		t.Fatal("password match is wrong")
	}
}

func TestRequire(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)
	tok, _ := tokens.Issue("user-9")

	var seen string
	h := Require(tokens, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFrom(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + tok, http.StatusUnauthorized},
		{"valid", "Bearer " + tok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/budgets", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
	if seen != "user-9" {
		t.Fatalf("user in context = %q", seen)
	}
}
