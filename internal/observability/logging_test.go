package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestConsoleLoggerHonoursLevelAndBecomesDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := InitConsoleLogger(&buf, "warn")
	logger.InfoContext(context.Background(), "dropped")
	logger.WarnContext(context.Background(), "kept", "resource", "orders")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["msg"] != "kept" || entries[0]["resource"] != "orders" {
		t.Fatalf("unexpected entries %v", entries)
	}
	if _, ok := entries[0]["trace_id"]; ok {
		t.Fatal("expected no trace_id without an active span")
	}
	if slog.Default() != logger {
		t.Fatal("expected console logger to become the default logger")
	}
}

func TestTraceHandlerStampsActiveSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&traceHandler{next: jsonHandler(&buf, "info")})
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	logger.InfoContext(trace.ContextWithSpanContext(context.Background(), sc), "traced")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["trace_id"] != sc.TraceID().String() || entries[0]["span_id"] != sc.SpanID().String() {
		t.Fatalf("unexpected entries %v", entries)
	}
}

func TestFanoutHandlerRespectsEachLevel(t *testing.T) {
	var all, errs bytes.Buffer
	logger := slog.New(fanoutHandler{jsonHandler(&all, "debug"), jsonHandler(&errs, "error")}).With("resource", "orders")
	logger.Debug("detail")
	logger.Error("boom")

	if got := decodeLines(t, &all); len(got) != 2 || got[0]["resource"] != "orders" {
		t.Fatalf("expected both records in the debug sink, got %v", got)
	}
	if got := decodeLines(t, &errs); len(got) != 1 || got[0]["msg"] != "boom" {
		t.Fatalf("expected only the error record, got %v", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "loud": slog.LevelInfo}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
