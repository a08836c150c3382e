// Package logger wraps slog with the small surface the services need: leveled
// key/value logging plus Fatal for unrecoverable startup errors.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the application logger. It embeds *slog.Logger, so the usual
// Debug/Info/Warn/Error methods are available directly.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing text records to stdout. level follows slog
// semantics: 0 is Info, -4 enables Debug.
func New(level int) *Logger {
	return NewWithOutput(os.Stdout, level)
}

// NewWithOutput creates a Logger writing to w, mainly so tests can capture or
// discard output.
func NewWithOutput(w io.Writer, level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.Level(level)})),
	}
}

// Fatal logs at Error level and exits the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
