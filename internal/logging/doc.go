// Package logging builds the slog loggers used across Soundcheck.
//
// It provides a human-oriented console handler for interactive use, a JSON
// handler for machine-readable logs, attribute helpers, and standardized field
// names so that run, artist, and stage identifiers look the same everywhere.
package logging
