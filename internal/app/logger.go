package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON for log shippers in
// production, text for local runs. Source locations are always attached
// so posting failures point at the offending call site.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
