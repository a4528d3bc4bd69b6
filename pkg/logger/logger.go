// Package logger configures the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
)

// New builds a text slog logger and installs it as the default.
// Verbose enables debug-level output.
func New(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
