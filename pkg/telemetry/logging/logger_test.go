package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConfigure_JSONOutput(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	if err := Configure(Config{Level: "info", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	slog.Info("hello", "component", "test")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "hello" || entry["component"] != "test" {
		t.Errorf("entry = %v", entry)
	}
}

func TestConfigure_LevelFilters(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	if err := Configure(Config{Level: "warn", Format: "text", Output: &buf}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	slog.Info("suppressed")
	slog.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info log not filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn log missing")
	}
}

func TestConfigure_RejectsUnknown(t *testing.T) {
	if err := Configure(Config{Level: "loud"}); err == nil {
		t.Error("unknown level accepted")
	}
	if err := Configure(Config{Format: "xml"}); err == nil {
		t.Error("unknown format accepted")
	}
}
