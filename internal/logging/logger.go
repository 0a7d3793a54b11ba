package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/stakeback/cashback-backend/internal/config"
)

// Setup installs JSON logging to stdout, and to a rotating file when
// LOG_FILE is set. It returns the installed handler so a database sink can
// be chained once the store is reachable.
func Setup(cfg *config.Config) slog.Handler {
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(cfg.LogLevel),
	})
	slog.SetDefault(slog.New(handler))
	return handler
}

// ParseLevel maps LOG_LEVEL to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
