package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/edubot/edubot-go/internal/ctxutil"
)

func TestNewWithWriterJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("test").WithField("key", "value").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if entry["message"] != "hello" {
		t.Errorf("Expected message 'hello', got %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("Expected level 'info', got %v", entry["level"])
	}
	if entry["module"] != "test" {
		t.Errorf("Expected module 'test', got %v", entry["module"])
	}
	if entry["key"] != "value" {
		t.Errorf("Expected key 'value', got %v", entry["key"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("Info log should be filtered at warn level, got: %s", buf.String())
	}

	log.Warn("should appear")
	if buf.Len() == 0 {
		t.Error("Warn log should not be filtered at warn level")
	}
}

func TestWarnLevelRenamed(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Warn("careful")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if entry["level"] != "warning" {
		t.Errorf("Expected level 'warning', got %v", entry["level"])
	}
}

func TestContextHandlerExtractsValues(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithRequestID(context.Background(), "req-1")
	ctx = ctxutil.WithSessionKey(ctx, "sess-1")
	ctx = ctxutil.WithConversationID(ctx, 7)

	log.InfoContext(ctx, "with context")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("Expected request_id req-1, got %v", entry["request_id"])
	}
	if entry["session_key"] != "sess-1" {
		t.Errorf("Expected session_key sess-1, got %v", entry["session_key"])
	}
	if entry["conversation_id"] != "7" {
		t.Errorf("Expected conversation_id 7, got %v", entry["conversation_id"])
	}
}

func TestMultiHandlerFanOut(t *testing.T) {
	var first, second bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&first, nil),
		slog.NewJSONHandler(&second, nil),
	)
	log := slog.New(h)

	log.Info("fan out")

	if first.Len() == 0 || second.Len() == 0 {
		t.Error("Expected both handlers to receive the record")
	}
}

func TestMultiHandlerRespectsPerSinkLevels(t *testing.T) {
	var debugSink, errorSink bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&debugSink, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&errorSink, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h)

	log.Info("below the error sink's level")

	if debugSink.Len() == 0 {
		t.Error("Debug sink should receive the info record")
	}
	if errorSink.Len() != 0 {
		t.Error("Error sink should filter out the info record")
	}
}

func TestMultiHandlerSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(nil, slog.NewJSONHandler(&buf, nil))
	log := slog.New(h)

	log.Info("only one")
	if buf.Len() == 0 {
		t.Error("Non-nil handler should receive the record")
	}
}
