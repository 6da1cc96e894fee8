package logger

import (
	"log/slog"
	"os"
)

// Log is usable before Init so packages can log during tests.
var Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init configures the JSON logger. Debug output is enabled outside production.
func Init(env string) {
	level := slog.LevelDebug
	if env == "production" {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	Log = slog.New(handler).With("service", "careers-backend")
	slog.SetDefault(Log)
}
