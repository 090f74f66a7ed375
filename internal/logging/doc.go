// Package logging assembles the structured slog loggers used across logmon.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers plus standard field keys so every
// component tags its lines the same way. A no-op logger is provided for
// tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape as the rest of the system.
package logging
