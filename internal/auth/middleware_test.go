package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthMiddleware_NoToken(t *testing.T) {
	mw := NewMiddleware([]byte("test-secret"))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/stats/summary?uid=u1", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ExemptPath(t *testing.T) {
	handler := NewMiddleware([]byte("test-secret")).Wrap(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for health check, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ValidTokenSetsUser(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "u1", "", time.Hour)

	var seen string
	handler := NewMiddleware(secret).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || seen != "u1" {
		t.Fatalf("expected 200 with user u1, got %d %q", resp.Code, seen)
	}
}

func TestAuthMiddleware_DisabledWithoutSecret(t *testing.T) {
	handler := NewMiddleware(nil).Wrap(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected passthrough, got %d", resp.Code)
	}
}

func TestParseJWT(t *testing.T) {
	secret := []byte("test-secret")

	claims, err := ParseJWT(mustToken(t, secret, "", "sub-user", time.Hour), secret)
	if err != nil || claims.UserID() != "sub-user" {
		t.Fatalf("expected subject fallback, got %v %v", claims, err)
	}

	if _, err := ParseJWT(mustToken(t, secret, "u1", "", -time.Hour), secret); err == nil {
		t.Fatalf("expected expired token to fail")
	}
	if _, err := ParseJWT(mustToken(t, []byte("other"), "u1", "", time.Hour), secret); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}
	if _, err := ParseJWT(mustToken(t, secret, "", "", time.Hour), secret); !errors.Is(err, ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}
	if _, err := ParseJWT("", secret); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}

func TestResolveUser(t *testing.T) {
	ctx := context.Background()
	if _, err := ResolveUser(ctx, ""); !errors.Is(err, ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}
	if got, _ := ResolveUser(ctx, "u1"); got != "u1" {
		t.Fatalf("unauthenticated request should trust uid, got %q", got)
	}

	authed := WithUser(ctx, "u1")
	if got, err := ResolveUser(authed, ""); err != nil || got != "u1" {
		t.Fatalf("expected token user, got %q %v", got, err)
	}
	if _, err := ResolveUser(authed, "u2"); !errors.Is(err, ErrUserMismatch) {
		t.Fatalf("expected ErrUserMismatch, got %v", err)
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func mustToken(t *testing.T, secret []byte, uid, subject string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
