package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestAuthenticator(t *testing.T, issuer string) *IdPAuthenticator {
	t.Helper()
	idp, err := NewIdPAuthenticator(issuer, "client-id", "client-secret", 5*time.Second)
	if err != nil {
		t.Fatalf("NewIdPAuthenticator: %v", err)
	}
	return idp
}

func TestNewIdPAuthenticatorRequiresConfig(t *testing.T) {
	if _, err := NewIdPAuthenticator("", "client-id", "secret", time.Second); err == nil {
		t.Error("expected error for missing issuer")
	}
	if _, err := NewIdPAuthenticator("https://idp.example.org", "", "secret", time.Second); err == nil {
		t.Error("expected error for missing client id")
	}
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if r.Form.Get("username") != "admin@example.org" || r.Form.Get("password") != "hunter2" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	idp := newTestAuthenticator(t, server.URL)

	session, err := idp.Login(context.Background(), "admin@example.org", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.AccessToken != "tok-123" || session.TokenType != "Bearer" {
		t.Errorf("session = %+v", session)
	}
	if session.ExpiresAt.Before(time.Now()) {
		t.Error("expiry not set from expires_in")
	}

	if _, err := idp.Login(context.Background(), "admin@example.org", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := idp.Login(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty credentials = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"admin","email":"admin@example.org"}`))
	}))
	defer server.Close()

	idp := newTestAuthenticator(t, server.URL)

	claims, err := idp.ValidateToken(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims["sub"] != "admin" {
		t.Errorf("claims = %v", claims)
	}

	if _, err := idp.ValidateToken(context.Background(), ""); !errors.Is(err, ErrTokenRejected) {
		t.Fatalf("empty token = %v, want ErrTokenRejected", err)
	}
}

func TestValidateTokenRejectionIsFinal(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	idp := newTestAuthenticator(t, server.URL)

	if _, err := idp.ValidateToken(context.Background(), "stale-token"); !errors.Is(err, ErrTokenRejected) {
		t.Fatalf("err = %v, want ErrTokenRejected", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("provider asked %d times for a rejected token, want 1", got)
	}
}

func TestValidateTokenRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"admin"}`))
	}))
	defer server.Close()

	idp := newTestAuthenticator(t, server.URL)

	claims, err := idp.ValidateToken(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims["sub"] != "admin" {
		t.Errorf("claims = %v", claims)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestValidateTokenStopsOnNonRetriableTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	idp := newTestAuthenticator(t, server.URL)

	start := time.Now()
	_, err := idp.ValidateToken(context.Background(), "good-token")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if errors.Is(err, ErrTokenRejected) {
		t.Fatalf("connection failure must not read as rejection: %v", err)
	}
	// A refused connection is not transient; the loop must not burn through
	// its backoff schedule.
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("took %v, expected no backoff sleeps", elapsed)
	}
}
