// Package logging installs the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// SetupJSON makes a JSON slog logger on stdout the default and returns it.
// Every record carries the service name.
func SetupJSON(level slog.Level, service string) *slog.Logger {
	logger := newJSON(os.Stdout, level).With("service", service)
	slog.SetDefault(logger)

	return logger
}

func newJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
