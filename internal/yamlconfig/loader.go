// Package yamlconfig loads network declarations from YAML files. The
// attributes match the HCL `network` block one to one.
package yamlconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/partsegnet/internal/config"
	"github.com/specialistvlad/partsegnet/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	model := &config.Model{}
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		m, err := l.LoadBytes(ctx, b, path)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(m); err != nil {
			return nil, err
		}
	}

	logger.Debug("YAML loading complete.", "networks", len(model.Networks))
	return model, nil
}

// LoadBytes decodes one file. Unknown keys are errors.
func (l *Loader) LoadBytes(ctx context.Context, b []byte, filename string) (*config.Model, error) {
	var dto yamlFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
	}

	model := &config.Model{}
	for i, n := range dto.Networks {
		network, err := mapNetwork(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("network %d of %s: %w", i, filename, err)
		}
		network.Source = filename
		if err := model.Merge(&config.Model{Networks: []*config.Network{network}}); err != nil {
			return nil, err
		}
	}
	return model, nil
}
