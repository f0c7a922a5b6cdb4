package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/hanriel/thermal-controller-iot/internal/config"
)

// New builds the process logger. Text format gets a colorized tint handler
// for terminals; anything else gets JSON for log shippers.
func New(cfg config.LoggingConfig, version string, appName string) *slog.Logger {
	level, _ := config.ParseLogLevel(cfg.Level)

	if cfg.Format == "text" {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
	)
}
