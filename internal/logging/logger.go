// Package logging provides structured logging configuration using log/slog.
//
// Log output goes to stderr so that `migrate generate` can still write the
// SQL script to stdout. Every entry made through FromContext carries the
// run_id of the migration it belongs to.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// New creates a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
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

// FromContext returns the default logger, with run_id added when ctx
// carries one.
//
// Usage:
//
//	logger := logging.FromContext(ctx)
//	logger.Info("writing script", "path", path)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if runID := core.RunIDFromContext(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}

	return logger
}

// WithFields returns a context logger with additional structured fields.
//
// Usage:
//
//	applyLogger := logging.WithFields(ctx, "driver", "mysql")
//	applyLogger.Info("connected")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
