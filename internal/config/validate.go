package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTrim(); err != nil {
		return err
	}
	if err := c.validateRenderer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateTrim() error {
	if c.Trim.CopyTimeout <= 0 {
		return errors.New("trim.copy_timeout must be positive")
	}
	if c.Trim.EncodeTimeout <= 0 {
		return errors.New("trim.encode_timeout must be positive")
	}
	if c.Trim.CRF < 0 || c.Trim.CRF > 51 {
		return errors.New("trim.crf must be between 0 and 51")
	}
	if c.Trim.Preset == "" {
		return errors.New("trim.preset must be set")
	}
	if c.Trim.PixelFormat == "" {
		return errors.New("trim.pixel_format must be set")
	}
	return nil
}

func (c *Config) validateRenderer() error {
	if c.Renderer.Binary == "" {
		return errors.New("renderer.binary must be set")
	}
	if c.Renderer.Composition == "" {
		return errors.New("renderer.composition must be set")
	}
	if c.Renderer.Timeout <= 0 {
		return errors.New("renderer.timeout must be positive")
	}
	if c.Renderer.Concurrency <= 0 {
		return errors.New("renderer.concurrency must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
