package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ayusman/gamesight/internal/logging"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("game detected", "game", "valorant", "confidence", 0.95)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (debug filtered): %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["msg"] != "game detected" || entry["game"] != "valorant" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewAutoFormat(t *testing.T) {
	// A buffer is never a terminal, so auto resolves to json.
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "auto", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello")

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected json output, got %q", buf.String())
	}
}

func TestNewConsoleDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("template scored", "template", "cod_hud")

	out := buf.String()
	if !strings.Contains(out, "template=cod_hud") {
		t.Errorf("missing attribute in %q", out)
	}
	if !strings.Contains(out, ".go:") {
		t.Errorf("expected source location at debug level, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Error("expected an error for unknown format")
	}
}
