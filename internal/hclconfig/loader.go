// Package hclconfig loads network declarations from HCL files.
package hclconfig

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/partsegnet/internal/config"
	"github.com/specialistvlad/partsegnet/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every file and translates its network blocks into the model.
// Network names must be unique across the files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range paths {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := l.decodeFile(ctx, hclFile.Body, file, model); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.", "networks", len(model.Networks))
	return model, nil
}

// LoadBytes parses a single in-memory file. filename is used in diagnostics.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	model := &config.Model{}
	if err := l.decodeFile(ctx, hclFile.Body, filename, model); err != nil {
		return nil, err
	}
	return model, nil
}

func (l *Loader) decodeFile(ctx context.Context, body hcl.Body, filename string, model *config.Model) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	for _, block := range root.Networks {
		network, diags := l.translateNetwork(ctx, block)
		if diags.HasErrors() {
			return fmt.Errorf("in network %q of %s: %w", block.Name, filename, diags)
		}
		network.Source = filename
		if err := model.Merge(&config.Model{Networks: []*config.Network{network}}); err != nil {
			return err
		}
	}
	return nil
}
