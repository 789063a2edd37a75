package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/specialistvlad/partsegnet/internal/config"
	"github.com/specialistvlad/partsegnet/internal/ctxlog"
	"github.com/specialistvlad/partsegnet/internal/hclconfig"
	"github.com/specialistvlad/partsegnet/internal/yamlconfig"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader
}

// NewApp is the constructor for the main application. Artifacts without a
// configured destination go to outW; logs go to logW. A nil loader selects
// DefaultLoader.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	if loader == nil {
		loader = DefaultLoader()
	}
	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
	}
}

// DefaultLoader reads `.hcl`, `.yaml` and `.yml` files.
func DefaultLoader() config.Loader {
	yml := yamlconfig.NewLoader()
	return config.ByExtension{
		".hcl":  hclconfig.NewLoader(),
		".yaml": yml,
		".yml":  yml,
	}
}

// Context returns ctx carrying the app's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
