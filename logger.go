package assetgo

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/assetgo/asset"
)

// Logger wraps slog.Logger with asset-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithURI adds a uri field to the logger.
func (l *Logger) WithURI(uri string) *Logger {
	return &Logger{
		Logger: l.Logger.With("uri", uri),
	}
}

// WithTag adds the asset type to the logger.
func (l *Logger) WithTag(tag asset.TypeTag) *Logger {
	return &Logger{
		Logger: l.Logger.With("asset_type", tag.String()),
	}
}

// WithID adds an asset id field to the logger.
func (l *Logger) WithID(id asset.ID) *Logger {
	return &Logger{
		Logger: l.Logger.With("id", id.String()),
	}
}

// LogLoad logs the outcome of a load.
func (l *Logger) LogLoad(ctx context.Context, uri string, tag asset.TypeTag, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"uri", uri,
			"asset_type", tag.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"uri", uri,
			"asset_type", tag.String(),
			"duration", d,
		)
	}
}

// LogFree logs assets removed from a store.
func (l *Logger) LogFree(ctx context.Context, tag asset.TypeTag, count int) {
	l.DebugContext(ctx, "assets freed",
		"asset_type", tag.String(),
		"count", count,
	)
}

// LogReconcile logs a reference-count reconciliation pass. Passes that did
// nothing are not logged.
func (l *Logger) LogReconcile(ctx context.Context, stats asset.ReconcileStats) {
	if stats.Events == 0 {
		return
	}
	l.DebugContext(ctx, "references reconciled",
		"events", stats.Events,
		"freed", stats.Freed,
		"duration", stats.Duration,
	)
}
