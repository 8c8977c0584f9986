// Package logger is quotadeck's structured logging front. Everything
// writes to stderr through one slog.Logger so log lines never corrupt
// the report or the alt-screen dashboard on stdout.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the process-wide logger. Tests swap it to capture output.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: levelFromEnv(),
}))

// levelFromEnv reads QUOTADECK_LOG_LEVEL. Unset or unrecognized values
// keep the default of info.
func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("QUOTADECK_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
