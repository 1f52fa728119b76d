package wikiboot

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestSlogLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := SlogLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.LogLoad(LoadLogEvent{Step: "load.script", Key: "npm/a.js", Duration: time.Millisecond})
	logger.LogLoad(LoadLogEvent{Step: "i18n", Key: "wikiparse-i18n", Err: errors.New("boom")})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected two records, got %d: %s", len(lines), buf.String())
	}
	var first, second map[string]any
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["level"] != "DEBUG" || first["step"] != "load.script" || first["key"] != "npm/a.js" {
		t.Fatalf("unexpected debug record %v", first)
	}
	if second["level"] != "WARN" || second["error"] != "boom" {
		t.Fatalf("unexpected warn record %v", second)
	}
}

func TestLoggerFallbacks(t *testing.T) {
	SlogLogger(nil).LogLoad(LoadLogEvent{Step: "noop"})
	LoggerFunc(nil).LogLoad(LoadLogEvent{Step: "noop"})

	var steps []string
	cfg := applyOptions([]Option{WithLogger(LoggerFunc(func(event LoadLogEvent) {
		steps = append(steps, event.Step)
	}))})
	cfg.logger.LogLoad(LoadLogEvent{Step: "bootstrap"})
	if len(steps) != 1 || steps[0] != "bootstrap" {
		t.Fatalf("expected custom logger to receive events, got %v", steps)
	}

	if _, ok := applyOptions([]Option{WithLogger(nil)}).logger.(noopLogger); !ok {
		t.Fatalf("expected nil logger to disable logging")
	}
}
