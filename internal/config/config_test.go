package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"logmon/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesTargetsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := writeConfig(t, `
[paths]
log_dir = "~/logmon-logs"

[monitor]
targets = ["/var/log/app", " /var/log/other ", "/var/log/app"]

[archive]
enabled = true
retention_days = 7
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, "logmon-logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if len(cfg.Monitor.Targets) != 2 {
		t.Fatalf("expected duplicate/blank targets collapsed, got %v", cfg.Monitor.Targets)
	}
	if cfg.Monitor.Targets[0] != "/var/log/app" || cfg.Monitor.Targets[1] != "/var/log/other" {
		t.Fatalf("unexpected targets: %v", cfg.Monitor.Targets)
	}
	if !cfg.Archive.Enabled || cfg.Archive.RetentionDays != 7 {
		t.Fatalf("unexpected archive settings: %+v", cfg.Archive)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadRejectsEmptyTargets(t *testing.T) {
	path := writeConfig(t, `
[monitor]
targets = []
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for empty target list")
	}
	if !strings.Contains(err.Error(), "monitor.targets") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsRelativeTarget(t *testing.T) {
	// Relative targets would resolve against the daemon's working directory,
	// which is not where the operator expects.
	path := writeConfig(t, `
[monitor]
targets = ["logs/app"]
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for relative target")
	}
}

func TestNormalizeLoggingFallsBackToConsole(t *testing.T) {
	path := writeConfig(t, `
[monitor]
targets = ["/var/log/app"]

[logging]
format = "XML"
level = "DEBUG"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected console fallback, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased level, got %q", cfg.Logging.Level)
	}
}

func TestDerivedPathsLiveInLogDir(t *testing.T) {
	path := writeConfig(t, `
[paths]
log_dir = "/tmp/logmon-test-logs"

[monitor]
targets = ["/var/log/app"]
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	for name, derived := range map[string]string{
		"socket":  cfg.SocketPath(),
		"lock":    cfg.LockPath(),
		"pid":     cfg.PIDPath(),
		"archive": cfg.ArchivePath(),
	} {
		if filepath.Dir(derived) != cfg.Paths.LogDir {
			t.Fatalf("%s path %q not under log dir %q", name, derived, cfg.Paths.LogDir)
		}
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[monitor]") {
		t.Fatalf("sample missing monitor section: %s", data)
	}
}
