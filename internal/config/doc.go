// Package config loads, normalizes, and validates logmon configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the daemon and CLI need: the monitored target base paths, the daemon's own
// log directory, archive retention, and log output settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
