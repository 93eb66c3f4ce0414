package logging

import (
	"log/slog"
	"path/filepath"

	"reelpress/internal/config"
)

// NewFromConfig creates a logger using application config defaults. Log lines
// are mirrored to a file under the configured log directory when one is set.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}
	opts := Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Paths.LogDir != "" {
		opts.OutputPath = filepath.Join(cfg.Paths.LogDir, "reelpress.log")
	}
	return New(opts)
}
