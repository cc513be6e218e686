package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_JSONCarriesApp(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter("catalog", &Config{Encoding: "json", Level: "debug"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.Debug("user upserted", "external_id", int64(42))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if record["app"] != "catalog" {
		t.Errorf("expected app=catalog, got %v", record["app"])
	}
	if record["msg"] != "user upserted" {
		t.Errorf("unexpected msg %v", record["msg"])
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter("bot", &Config{Encoding: "console", Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record must be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "app=bot") {
		t.Errorf("expected warn record with app attr, got %q", out)
	}
}

func TestNewWithWriter_InvalidConfig(t *testing.T) {
	if _, err := NewWithWriter("x", &Config{Encoding: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown encoding")
	}
	if _, err := NewWithWriter("x", &Config{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARNING")
	if err != nil || lvl != slog.LevelWarn {
		t.Errorf("expected warn, got %v, %v", lvl, err)
	}
}
