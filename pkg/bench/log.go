package bench

import (
	"io"
	"log/slog"
	"os"
)

// verboseLogger wraps a *slog.Logger and is a silent no-op unless verbose
// logging was requested. Kept out of the measurement loop entirely (the
// Runner's controller goroutine calls it, and each worker calls it only
// before and after its timed loop) so it cannot add per-operation overhead
// to timed samples.
type verboseLogger struct {
	logger *slog.Logger
}

func newVerboseLogger(verbose bool) *verboseLogger {
	var handler slog.Handler
	if verbose {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewTextHandler(io.Discard, nil)
	}
	return &verboseLogger{logger: slog.New(handler)}
}

func (l *verboseLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *verboseLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// With returns a child logger carrying args on every subsequent record, the
// way a per-worker trace point tags its lines with the worker's id.
func (l *verboseLogger) With(args ...any) *verboseLogger {
	return &verboseLogger{logger: l.logger.With(args...)}
}
