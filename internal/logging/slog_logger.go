// Package logging provides a common interface and setup for application-wide logging.
package logging

// file: internal/logging/slog_logger.go

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// slogLogger implements the Logger interface using the standard library's
// structured logger. Output goes to stderr by default so that stdout stays
// reserved for the stdio transport.
type slogLogger struct {
	logger *slog.Logger
}

// Options configures the slog-backed logger.
type Options struct {
	// Level is the minimum severity that will be emitted ("debug", "info",
	// "warn", "error"). Defaults to "info" when empty or unrecognized.
	Level string

	// Format selects the handler: "json" or "text". Defaults to "text".
	Format string

	// Output is the destination writer. Defaults to os.Stderr.
	Output io.Writer
}

// NewSlogLogger creates a Logger backed by log/slog with the given options.
func NewSlogLogger(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &slogLogger{logger: slog.New(handler)}
}

// ParseLevel maps a level name onto an slog.Level, defaulting to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a debug-level message.
func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs an info-level message.
func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a warning-level message.
func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs an error-level message.
func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// WithContext returns the logger itself; context values are not extracted.
func (l *slogLogger) WithContext(_ context.Context) Logger {
	return l
}

// WithField returns a logger that includes the given field on every record.
func (l *slogLogger) WithField(key string, value any) Logger {
	return &slogLogger{logger: l.logger.With(key, value)}
}
