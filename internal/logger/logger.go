// Package logger builds the slog logger shared by server-side entrypoints.
// The minimum level lives in a slog.LevelVar so a config reload can tighten
// or loosen logging without restarting the process.
package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON logger whose minimum level matches env, plus the level
// handle for runtime adjustment.
func New(env string) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(LevelFor(env))

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler), level
}

// LevelFor maps an application environment to its minimum log level.
// Deployed environments log info and above; everything else gets debug.
func LevelFor(env string) slog.Level {
	switch env {
	case "production", "staging":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
