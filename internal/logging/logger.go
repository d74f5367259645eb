// Package logging wraps slog with the field names used across plexquant.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"plexquant/internal/kmeans"
)

// Logger wraps slog.Logger with clustering-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger for handler. A nil handler logs text to stderr at info.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewText creates a human-readable Logger on stderr.
func NewText(level slog.Level) *Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSON creates a JSON Logger on stderr.
func NewJSON(level slog.Level) *Logger {
	return New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Noop returns a Logger that discards everything.
func Noop() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

// FromFlags builds a Logger from the -log-level and -log-format CLI values.
func FromFlags(level, format string) *Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if strings.EqualFold(format, "json") {
		return NewJSON(lvl)
	}
	return NewText(lvl)
}

// WithRun tags entries with an analysis run id.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{Logger: l.Logger.With("run_id", id)}
}

// WithFrame tags entries with a frame number.
func (l *Logger) WithFrame(n int) *Logger {
	return &Logger{Logger: l.Logger.With("frame", n)}
}

// LogClustering logs the outcome of one k-means run.
func (l *Logger) LogClustering(ctx context.Context, k, pixels int, res kmeans.Result, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clustering failed",
			"k", k,
			"pixels", pixels,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "clustering completed",
		"k", k,
		"pixels", pixels,
		"epochs", res.Epochs,
		"movement", res.Movement,
		"converged", res.Converged,
	)
}

// EpochObserver returns a kmeans observer that logs each epoch at debug level.
func (l *Logger) EpochObserver(ctx context.Context) func(kmeans.Epoch) {
	if !l.Enabled(ctx, slog.LevelDebug) {
		return nil
	}
	return func(e kmeans.Epoch) {
		l.DebugContext(ctx, "epoch",
			"index", e.Index,
			"stride", e.Stride,
			"sampled", e.Sampled,
			"movement", e.Movement,
		)
	}
}
