package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"finlens/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if !strings.HasPrefix(a, "req_") {
		t.Fatalf("unexpected id %q", a)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(a, "req_")); err != nil {
		t.Fatalf("id %q does not carry a uuid: %v", a, err)
	}
	if a == b {
		t.Fatal("ids should differ")
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf, Format: "json"})

	var seenID string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		log.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	h := NewMiddleware(logger, func(*http.Request) string { return "198.51.100.1" }).Middleware(mux)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/things/42", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if seenID == "" || rec.Header().Get(RequestIDHeader) != seenID {
		t.Fatalf("request id not propagated: header %q, context %q", rec.Header().Get(RequestIDHeader), seenID)
	}

	out := buf.String()
	if !strings.Contains(out, `"msg":"inside handler"`) || !strings.Contains(out, seenID) {
		t.Fatalf("handler log should carry the request id:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"HTTP request completed"`) || !strings.Contains(out, `"status_code":418`) {
		t.Fatalf("missing completion log:\n%s", out)
	}
}

func TestRecordPatternThroughReplacedRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/items", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	var inner http.Handler = RecordPattern(mux)
	replacing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner.ServeHTTP(w, r.WithContext(r.Context()))
	})

	var seen *route
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(routeKey).(*route)
		replacing.ServeHTTP(w, r)
	})

	h := NewMiddleware(log.New(log.Config{Output: &bytes.Buffer{}}), nil).Middleware(capture)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/items", nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	if seen == nil || seen.pattern != "POST /api/items" {
		t.Fatalf("pattern not recorded: %+v", seen)
	}
}
