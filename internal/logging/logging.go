// Package logging wraps log/slog so every component logs through the
// same handler. Initialize once at startup, then grab component loggers:
//
//	logging.Init(slog.LevelInfo, false)
//	log := logging.Component("api")
//	log.Info("listening", "addr", addr)
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the process-wide logger instance.
var Logger *slog.Logger

// Init installs the global logger. JSON format is meant for production;
// text for humans.
func Init(level slog.Level, jsonFormat bool) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// Component returns a logger tagged with a component name.
func Component(name string) *slog.Logger {
	if Logger == nil {
		Init(slog.LevelInfo, false)
	}
	return Logger.With("component", name)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
