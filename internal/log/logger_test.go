package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentRecurring, Output: &buf})

	logger.InfoContext(context.Background(), "materialized", FieldCount, 3)

	out := buf.String()
	if !strings.Contains(out, "component=recurring") {
		t.Errorf("log line missing component: %s", out)
	}
	if !strings.Contains(out, "count=3") {
		t.Errorf("log line missing field: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Format: "json", Output: &buf})
	logger.InfoContext(context.Background(), "hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON output, got %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf}).With(FieldRequestID, "req_42")

	ctx := NewContext(context.Background(), base)
	FromContext(ctx).InfoContext(ctx, "inside")

	if !strings.Contains(buf.String(), "request_id=req_42") {
		t.Errorf("log line missing request id: %s", buf.String())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Errorf("FromContext() = %+v, want default logger", l)
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().WithOperation(OpMaterialize).WithComponent(ComponentRecurring)
	if len(f.ToSlice()) != 4 {
		t.Errorf("ToSlice() length = %d, want 4", len(f.ToSlice()))
	}
}
