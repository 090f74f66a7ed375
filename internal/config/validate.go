package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTargets(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTargets() error {
	if len(c.Monitor.Targets) == 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/logmon/config.toml"
		}
		return fmt.Errorf("monitor.targets must list at least one base path. Edit %s (create with 'logmon config init')", defaultPath)
	}
	for _, target := range c.Monitor.Targets {
		if !filepath.IsAbs(target) {
			return fmt.Errorf("monitor.targets entry %q must be an absolute path", target)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Logging.Level == "" {
		return errors.New("logging.level must be set")
	}
	return nil
}
