package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New строит JSON-логгер. Явный level ("debug"|"info"|"warn"|"error")
// имеет приоритет; при пустом значении уровень выбирается по окружению:
// debug в dev, иначе info.
func New(env, level string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(env, level)})
	return slog.New(h)
}

func parseLevel(env, level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == "dev" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
