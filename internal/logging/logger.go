// Package logging configures the process-wide structured logger. Commands
// initialize it once from the --log-level flag; everything else logs
// through the package helpers or a component-scoped child logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

var logger *slog.Logger

// ParseLevel maps a level name to its slog level. Unknown names fall back
// to info rather than failing: a bad --log-level should never stop an
// operation from dispatching.
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

// Init installs the global logger, writing text records to stderr so JSON
// command output on stdout stays machine-readable.
func Init(level string) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// Logger returns the global logger, initializing it at info level if no
// command has done so yet.
func Logger() *slog.Logger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// With returns a child logger carrying a component attribute, used by
// long-lived subsystems (dispatcher, health runner, gateway).
func With(component string) *slog.Logger {
	return Logger().With("component", component)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}
