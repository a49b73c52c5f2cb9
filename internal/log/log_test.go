package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentSummary, Output: &buf})

	logger.Info("summary computed", FieldUserID, "u1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentSummary || entry[FieldUserID] != "u1" {
		t.Fatalf("unexpected entry %v", entry)
	}

	buf.Reset()
	logger.WithComponent(ComponentCache).Debug("hit")
	if strings.Count(buf.String(), `"component"`) != 1 || !strings.Contains(buf.String(), `"component":"cache"`) {
		t.Fatalf("expected a single cache component tag, got %q", buf.String())
	}
}

func TestTextFormatIsDefault(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Output: &buf}).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "component=app") {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf}).With(FieldRequestID, "req_1")

	FromContext(WithLogger(context.Background(), logger)).Info("inside")
	if !strings.Contains(buf.String(), `"request_id":"req_1"`) {
		t.Fatalf("request id missing from %q", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("fallback logger should report unknown component")
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}))
	req := httptest.NewRequest(http.MethodPost, "/api/insight", nil)

	sl.LogHTTPEnd(context.Background(), req, 503, 12, "1.2.3.4")
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Fatalf("5xx should log at error: %q", buf.String())
	}

	buf.Reset()
	sl.LogModelCall(context.Background(), OpExtract, 40, errors.New("quota"))
	if !strings.Contains(buf.String(), `"level":"WARN"`) || !strings.Contains(buf.String(), `"error":"quota"`) {
		t.Fatalf("failed model call should warn: %q", buf.String())
	}

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("x"), ComponentStorage, OpList, nil)
	if !strings.Contains(buf.String(), `"component":"storage"`) {
		t.Fatalf("component missing: %q", buf.String())
	}
}

func TestLogFieldsToSlice(t *testing.T) {
	s := NewFields().WithUser("u1").WithError(nil).ToSlice()
	if len(s) != 2 || s[0] != FieldUserID || s[1] != "u1" {
		t.Fatalf("unexpected slice %v", s)
	}
}
