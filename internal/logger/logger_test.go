package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupJSONIncludesRunID(t *testing.T) {
	var buf bytes.Buffer
	log := Setup("debug", "json", &buf)
	log.Debug().Str("component", "test").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if entry["message"] != "hello" || entry["component"] != "test" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if id, _ := entry["run_id"].(string); id == "" {
		t.Fatalf("expected run_id, got %v", entry)
	}
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Setup("warn", "json", &buf)
	log.Info().Msg("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	log.Warn().Msg("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Fatalf("expected warn entry, got %q", buf.String())
	}
}

func TestSetupInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := Setup("chatty", "pretty", &buf)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestOpenFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "skiptrack.log")
	file, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close log file: %v", err)
	}
}
