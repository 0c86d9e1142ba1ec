package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_Format(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("hello", "rows", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json output expected: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "hello" || entry["rows"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}

	buf.Reset()
	New(&buf, "warn", "text").Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}

func TestFromContext_Fields(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	SetupWriter(&buf, "info", "text")
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = WithSession(ctx, "sess-9")
	WithFields(ctx, "platform", "shopify").Info("converted")

	out := buf.String()
	for _, want := range []string{"request_id=req-1", "session_id=sess-9", "platform=shopify"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}

	if got := SessionFromContext(WithSession(context.Background(), "")); got != "" {
		t.Errorf("empty session id stored: %q", got)
	}
}
