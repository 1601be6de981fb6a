// Package logger sets up structured JSON logging with log/slog for the
// long-running services. Hot components keep stdlib log with a [component]
// prefix; slog carries service-level context.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Init creates a JSON slog logger tagged with the service name and installs
// it as the process default.
func Init(service string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	l := slog.New(handler).With(slog.String("service", service))
	slog.SetDefault(l)
	return l
}

// ParseLevel maps a LOG_LEVEL env value to a slog level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
