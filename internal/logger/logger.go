package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a structured logger; unless debug is enabled all output
// is discarded so piped stdout stays clean
func New(debug bool) *slog.Logger {
	var handler slog.Handler

	if !debug {
		handler = slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError,
		})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
