package logger

import (
	"io"
	"log/slog"
)

// NewTestHandler discards output but still honours level so Enabled checks behave.
func NewTestHandler(level slog.Level) slog.Handler {
	return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})
}
