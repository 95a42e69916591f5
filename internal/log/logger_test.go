package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Handler: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, " warning ": slog.LevelWarn,
		"error": slog.LevelError, "info": slog.LevelInfo, "verbose": slog.LevelInfo, "": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogRequest_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusNotFound, "level=WARN"},
		{http.StatusBadGateway, "level=ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		r := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
		LogRequest(context.Background(), newBufferLogger(&buf), r, tt.status, 12, "203.0.113.1")
		out := buf.String()
		if !strings.Contains(out, tt.level) || !strings.Contains(out, "path=/api/clients") || !strings.Contains(out, "client_ip=203.0.113.1") {
			t.Errorf("status %d: log line %q", tt.status, out)
		}
	}
}

func TestMiddleware_PutsRequestLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	h := Middleware(newBufferLogger(&buf), func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			l := FromContext(r.Context())
			if l.Component() != ComponentHTTP {
				t.Errorf("component = %q", l.Component())
			}
			l.Info("inside")
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(buf.String(), FieldRequestID+"=req_1") {
		t.Fatalf("request id missing: %q", buf.String())
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Logger == nil {
		t.Fatal("expected a usable fallback logger")
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	LogError(context.Background(), newBufferLogger(&buf), "save failed", errors.New("disk full"),
		ComponentStorage, OpUpdate, NewFields().WithEntity(EntityClient, "c1", 3))
	out := buf.String()
	for _, want := range []string{"level=ERROR", "disk full", FieldOperation + "=" + OpUpdate, FieldEntityID + "=c1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
}
