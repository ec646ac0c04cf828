package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/asyncq/config"
)

// Setup initializes the logging system from the provided configuration.
// It creates a structured JSON logger at the configured level, sets it
// as the process default, and returns it.
func Setup(cfg config.Config) (*slog.Logger, error) {
	return setup(cfg, os.Stdout)
}

func setup(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		// Invalid levels fall back to info rather than failing: a
		// misconfigured log level should never stop the queue.
		level = slog.LevelInfo

		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}
