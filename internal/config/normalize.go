package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTargets(); err != nil {
		return err
	}
	c.normalizeArchive()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTargets() error {
	targets := make([]string, 0, len(c.Monitor.Targets))
	seen := make(map[string]struct{}, len(c.Monitor.Targets))
	for _, target := range c.Monitor.Targets {
		trimmed := strings.TrimSpace(target)
		if trimmed == "" {
			continue
		}
		// expandPath absolutizes everything, so relative entries must be
		// caught here: they would otherwise resolve against whatever
		// directory the daemon happened to start in.
		if !strings.HasPrefix(trimmed, "~") && !filepath.IsAbs(trimmed) {
			return fmt.Errorf("monitor.targets entry %q must be an absolute path", trimmed)
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("monitor.targets: %w", err)
		}
		if _, exists := seen[expanded]; exists {
			continue
		}
		seen[expanded] = struct{}{}
		targets = append(targets, expanded)
	}
	c.Monitor.Targets = targets
	return nil
}

func (c *Config) normalizeArchive() {
	if c.Archive.RetentionDays < 0 {
		c.Archive.RetentionDays = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
