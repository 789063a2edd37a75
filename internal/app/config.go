package app

import (
	"errors"
	"fmt"
	"slices"
)

// Log levels and formats accepted by newLogger.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)

// ErrInvalidConfig is returned by NewConfig for unusable settings.
var ErrInvalidConfig = errors.New("invalid app configuration")

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPaths are HCL/YAML files or directories declaring networks.
	ConfigPaths []string
	// Networks, when set, limits Run to the named networks.
	Networks []string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(LogLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("%w: log level %q, want one of %v", ErrInvalidConfig, cfg.LogLevel, LogLevels)
	}
	if !slices.Contains(LogFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("%w: log format %q, want one of %v", ErrInvalidConfig, cfg.LogFormat, LogFormats)
	}
	return &cfg, nil
}
