package logger

import (
	"log/slog"
	"os"
)

// New настраивает JSON-логгер: в dev пишем и debug, в остальных
// окружениях — от info.
func New(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", "medrep-bot")
}
