package auth

import (
	"net/http"
	"strings"
)

// Middleware requires a valid bearer token on every path under one of
// Prefixes. A nil Middleware or an empty secret disables auth.
type Middleware struct {
	Secret   []byte
	Prefixes []string
}

func NewMiddleware(secret []byte, prefixes ...string) *Middleware {
	if len(prefixes) == 0 {
		prefixes = []string{"/api/"}
	}
	return &Middleware{Secret: secret, Prefixes: prefixes}
}

// Enabled reports whether tokens are checked at all.
func (m *Middleware) Enabled() bool {
	return m != nil && len(m.Secret) > 0
}

func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.protects(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := ParseJWT(extractBearer(r), m.Secret)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="finlens"`)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID())))
	})
}

func (m *Middleware) protects(path string) bool {
	for _, p := range m.Prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
