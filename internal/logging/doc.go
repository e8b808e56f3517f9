// Package logging assembles structured slog loggers and formatting helpers
// used across tidy.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so organizer code tags log lines
// with item IDs, watched roots, and categories consistently. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
