package log

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn", "json")

	logger.Info().Msg("hidden")
	logger.Warn().Str("user", "alice").Msg("shown")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single json line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "shown" || entry["user"] != "alice" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if lvl := parseLevel("verbose"); lvl.String() != "info" {
		t.Fatalf("unexpected level %v", lvl)
	}
}
