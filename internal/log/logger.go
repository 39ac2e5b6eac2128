// Package log wraps slog so every record carries the component that
// emitted it.
package log

import (
	"log/slog"
	"os"
)

// Logger tags each record with a fixed component attribute. The two
// binaries construct one at startup and install it as the slog default;
// packages log through slog directly and inherit the handler.
type Logger struct {
	*slog.Logger
	component string
}

// New creates a component-tagged logger writing text to stdout.
func New(level slog.Level, component string) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return NewWithHandler(handler, component)
}

// NewWithHandler creates a component-tagged logger on an existing handler.
func NewWithHandler(handler slog.Handler, component string) *Logger {
	return &Logger{
		Logger:    slog.New(handler),
		component: component,
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, append([]any{"component", l.component}, args...)...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, append([]any{"component", l.component}, args...)...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error(msg, append([]any{"component", l.component}, args...)...)
}

// SetDefault installs the logger's handler as the process-wide slog
// default.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
