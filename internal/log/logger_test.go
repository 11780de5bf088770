package log

import (
	"bytes"
	"context"
	"encoding/json"
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
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf, Component: ComponentImport})
	logger.Info("hello", FieldBank, "nubank")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if line[FieldComponent] != ComponentImport || line[FieldBank] != "nubank" {
		t.Fatalf("unexpected fields %v", line)
	}
}

func TestWithComponent_DoesNotDuplicateComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf}).WithComponent(ComponentHTTP)
	logger.Info("x")

	if n := strings.Count(buf.String(), "component="); n != 1 {
		t.Fatalf("expected one component attribute, got %d: %s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("expected http component: %s", buf.String())
	}
}

func TestMiddleware_AddsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	h := Middleware(logger, func(*http.Request) string { return "req_1" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("expected request id in log: %s", buf.String())
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", l)
	}
}

func TestStructuredLogger_SkippedRow(t *testing.T) {
	var buf bytes.Buffer
	NewStructuredLogger(New(Config{Format: "json", Output: &buf, Component: ComponentImport})).
		LogSkippedRow(context.Background(), "sess-1", 3, "negative amount", "-5")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if line[FieldOperation] != OpRead || line[FieldSessionID] != "sess-1" || line["row"] != float64(3) {
		t.Fatalf("unexpected fields %v", line)
	}
}
