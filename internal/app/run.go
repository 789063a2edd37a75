package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/partsegnet/internal/config"
)

// ErrNoNetworks is returned when Run finds nothing to generate.
var ErrNoNetworks = errors.New("no networks to generate")

// Run loads every configured network and generates them in declaration
// order. It stops at the first failure.
func (a *App) Run(ctx context.Context) error {
	ctx = a.Context(ctx)
	a.logger.Debug("App.Run method started.", "paths", a.config.ConfigPaths)

	model, err := a.loader.Load(ctx, a.config.ConfigPaths...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.logger.Debug("Configuration loaded and translated into unified model.", "networks", len(model.Networks))

	networks, err := a.selectNetworks(model)
	if err != nil {
		return err
	}
	if len(networks) == 0 {
		return ErrNoNetworks
	}

	a.logger.Info("🚀 Generating networks...", "count", len(networks))
	for _, n := range networks {
		if err := a.Generate(ctx, n); err != nil {
			return err
		}
	}
	a.logger.Info("🏁 Generation finished.")
	return nil
}

// selectNetworks applies the Networks filter, keeping declaration order.
func (a *App) selectNetworks(model *config.Model) ([]*config.Network, error) {
	if len(a.config.Networks) == 0 {
		return model.Networks, nil
	}
	for _, name := range a.config.Networks {
		if model.Network(name) == nil {
			return nil, fmt.Errorf("network %q is not declared in %v", name, a.config.ConfigPaths)
		}
	}
	var out []*config.Network
	for _, n := range model.Networks {
		if slices.Contains(a.config.Networks, n.Name) {
			out = append(out, n)
		}
	}
	return out, nil
}
