package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// TestDevLogger tests the development logger's pretty JSON output
func TestDevLogger(t *testing.T) {
	var buf bytes.Buffer
	devLogger := New(&buf, slog.LevelInfo, true)

	devLogger.Info("test message", "key", "value")
	output := buf.String()

	var result map[string]any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Output is not valid JSON: %v\nOutput was: %s", err, output)
	}
	if result["msg"] != "test message" {
		t.Errorf("Expected message 'test message', got '%v'", result["msg"])
	}
	if result["key"] != "value" {
		t.Errorf("Expected key 'value', got '%v'", result["key"])
	}
	if result["level"] != "INFO" {
		t.Errorf("Expected level 'INFO', got '%v'", result["level"])
	}
	if !strings.Contains(output, "\n  ") {
		t.Errorf("Expected indented output, got %q", output)
	}
}

// TestProdLogger tests the production logger's JSON output
func TestProdLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, false)

	logger.Info("compiled", "sql", "SELECT * FROM `foo`")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one line, got %d: %q", len(lines), buf.String())
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &result); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if result["sql"] != "SELECT * FROM `foo`" {
		t.Errorf("Expected sql attribute, got '%v'", result["sql"])
	}
}

func TestLevelFiltering(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer
		logger := New(&buf, slog.LevelWarn, pretty)

		logger.Debug("hidden")
		logger.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("pretty=%v: expected debug and info to be dropped, got %q", pretty, buf.String())
		}

		logger.Warn("shown")
		if !strings.Contains(buf.String(), "shown") {
			t.Errorf("pretty=%v: expected warn record, got %q", pretty, buf.String())
		}
	}
}

func TestPrettyJSONHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelDebug, true).With("adapter", "default")

	logger.Error("query failed", "error", errors.New("connection refused"))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if result["adapter"] != "default" {
		t.Errorf("Expected adapter attribute from With, got '%v'", result["adapter"])
	}
	if result["error"] != "connection refused" {
		t.Errorf("Expected error text, got '%v'", result["error"])
	}
}

func TestDiscard(t *testing.T) {
	if Discard.Enabled(t.Context(), slog.LevelError) {
		t.Error("Expected Discard to drop every level")
	}
}
