// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"logmon/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults to a single monitor target under the temp dir and applies any
// provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Monitor.Targets = []string{filepath.Join(base, "watched", "events")}

	if err := os.MkdirAll(cfgVal.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(base, "watched"), 0o755); err != nil {
		t.Fatalf("mkdir watched dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTargets replaces the monitor target list on the test config.
func WithTargets(targets ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Monitor.Targets = targets
	}
}

// WithArchive enables the delivered-line archive on the test config.
func WithArchive(retentionDays int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.Enabled = true
		b.cfg.Archive.RetentionDays = retentionDays
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
