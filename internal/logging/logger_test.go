package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandlerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar)).With(String(FieldComponent, "monitor"))

	logger.Info("poll pass complete", Int("files", 2), String("path", "/var/log/app file.txt"))

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, " INFO monitor: poll pass complete") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "files=2") {
		t.Fatalf("missing files attr: %q", line)
	}
	if !strings.Contains(line, `path="/var/log/app file.txt"`) {
		t.Fatalf("expected quoted path attr: %q", line)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should have been filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestNewJSONFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logmon.log")
	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{path}, ErrorOutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hello", String("k", "v"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &decoded); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if decoded["msg"] != "hello" {
		t.Fatalf("unexpected msg: %v", decoded["msg"])
	}
	if decoded["level"] != "debug" {
		t.Fatalf("unexpected level: %v", decoded["level"])
	}
	if decoded["k"] != "v" {
		t.Fatalf("unexpected attr: %v", decoded["k"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestCleanupOldLogsPrunesMatching(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "logmon-old.log")
	fresh := filepath.Join(dir, "logmon-fresh.log")
	keep := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, fresh, keep} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(keep, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	CleanupOldLogs(NewNop(), 5, RetentionTarget{Dir: dir, Pattern: "logmon-*.log", Exclude: []string{fresh}})

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("expected old log to be pruned")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("excluded log should remain")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatal("non-matching file should remain")
	}
}
