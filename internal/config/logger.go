package config

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger in dev and a JSON logger otherwise, so
// CloudWatch receives structured records.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts)).With("env", cfg.Environment)
}
