// Package log provides structured logging for citrine client operations.
//
// The package defines a minimal, slog-compatible logging interface backed by
// zerolog. Log records carry platform-domain attributes (dataset ids, view
// ids, job statuses, loop iterations) so that long-running uploads, training
// polls, and sequential-learning runs can be followed from the output.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ViewIDKey, "view-571",
//	    log.DatasetIDKey, "ds-12",
//	)
//	logger.Info("design run submitted",
//	    log.RunIDKey, runID,
//	    log.IterationKey, 3,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's
// log/slog calling convention: a message followed by alternating key-value
// pairs. Implementations must tolerate an error value in place of a
// key-value pair and attach it under the "error" key with a stack trace
// when one is available.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is an error, stack trace information extracted
	// from cockroachdb/errors is included under the stacktrace key.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to avoid building expensive attribute values that would be
	// discarded.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. It exists so that the CLI,
// tests, and library consumers can inject different backends without the
// packages below caring which one is active.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for loggers from this provider.
	SetLevel(level Level)
}
