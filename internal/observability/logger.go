package observability

import (
	"io"
	"log/slog"
	"os"

	"github.com/Gr33nOps/VTcade/config"
)

// NewLogger builds the service logger: JSON in production, text otherwise.
func NewLogger(cfg config.ObservabilityConfig) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg config.ObservabilityConfig) *slog.Logger {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)
}
