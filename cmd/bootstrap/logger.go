package bootstrap

import (
	"log/slog"

	"car-rental-booking/internal/handler/middleware"
	"car-rental-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
)

// NewLogger builds the process logger and installs it as the slog default,
// so packages logging through slog directly share its handler.
func NewLogger(cfg config.Config) *slog.Logger {
	logger := middleware.NewLogger(cfg.Log).GetSlogLogger()
	slog.SetDefault(logger)
	return logger
}
