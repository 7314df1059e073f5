// Package logging builds the slog loggers used across cama.
//
// Two handler formats are supported: a compact console handler for
// interactive use (color-aware via isatty) and a JSON handler for log files
// and machine consumption. Components receive loggers scoped with
// WithComponent so structured output can be filtered per subsystem.
package logging
