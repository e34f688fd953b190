package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSetup_ReturnsJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf)

	if l == nil {
		t.Fatal("expected non-nil logger")
	}

	l.Info("test message", slog.String("key", "value"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON log output, got error: %v\nraw output: %s", err, buf.String())
	}

	if entry["msg"] != "test message" {
		t.Errorf("msg = %q, want %q", entry["msg"], "test message")
	}
	if entry["key"] != "value" {
		t.Errorf("key = %q, want %q", entry["key"], "value")
	}
}

func TestSetup_IncludesTimeField(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf)

	l.Info("test")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	if _, ok := entry["time"]; !ok {
		t.Error("expected 'time' field in JSON log output")
	}
}

func TestSetup_IncludesLevelField(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf)

	l.Warn("warning test")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	if entry["level"] != "WARN" {
		t.Errorf("level = %q, want %q", entry["level"], "WARN")
	}
}

func TestSetup_MultipleAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf)

	l.Info("cleanup completed",
		slog.String("user_id", "uid-123"),
		slog.String("interview_id", "intv-456"),
		slog.Int("transcripts_deleted", 12),
		slog.Int("drafts_deleted", 4),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	if entry["user_id"] != "uid-123" {
		t.Errorf("user_id = %q, want %q", entry["user_id"], "uid-123")
	}
	if entry["interview_id"] != "intv-456" {
		t.Errorf("interview_id = %q, want %q", entry["interview_id"], "intv-456")
	}
	if entry["transcripts_deleted"] != float64(12) {
		t.Errorf("transcripts_deleted = %v, want %v", entry["transcripts_deleted"], 12)
	}
	if entry["drafts_deleted"] != float64(4) {
		t.Errorf("drafts_deleted = %v, want %v", entry["drafts_deleted"], 4)
	}
}

func TestSetup_DebugSuppressed(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf)

	l.Debug("noisy detail")

	if buf.Len() != 0 {
		t.Errorf("debug output should be suppressed at Info level, got %q", buf.String())
	}
}

func TestSetupDefault_SetsGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	SetupDefault(&buf)

	slog.Default().Info("global test", slog.String("test_key", "test_val"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v\nraw: %s", err, buf.String())
	}

	if entry["msg"] != "global test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "global test")
	}
	if entry["test_key"] != "test_val" {
		t.Errorf("test_key = %q, want %q", entry["test_key"], "test_val")
	}
}
