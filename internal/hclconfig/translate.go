// This file translates the HCL schema structs into the format-agnostic
// configuration model.

package hclconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/partsegnet/internal/config"
	"github.com/specialistvlad/partsegnet/internal/ctxlog"
	"github.com/specialistvlad/partsegnet/internal/hclutil"
	"github.com/specialistvlad/partsegnet/internal/partseg"
	"github.com/zclconf/go-cty/cty"
)

// translateNetwork applies the declared attributes over the builder
// defaults.
func (l *Loader) translateNetwork(ctx context.Context, b *networkBlock) (*config.Network, hcl.Diagnostics) {
	ctx, logger := ctxlog.With(ctx, "network", b.Name)
	logger.Debug("Translating HCL network to internal config model.")

	var diags hcl.Diagnostics

	opts := partseg.DefaultOptions()
	opts.Name = b.Name
	set(&opts.Arch, b.Arch)
	set(&opts.BatchNorm, b.BatchNorm)
	if b.Skips != nil {
		opts.Skips = b.Skips
	}
	set(&opts.BilateralNeighborhood, b.BilateralNeighborhood)
	set(&opts.ConvFiller, b.ConvFiller)
	set(&opts.BilateralFiller, b.BilateralFiller)
	set(&opts.Dataset, b.Dataset)
	set(&opts.Category, b.Category)
	set(&opts.SampleSize, b.SampleSize)
	set(&opts.BatchSize, b.BatchSize)
	set(&opts.FeatDims, b.FeatDims)
	if b.Lattices != nil {
		opts.Lattices = b.Lattices
	}
	set(&opts.Combined, b.Combined)
	set(&opts.RenormClass, b.RenormClass)
	set(&opts.RenormHead, b.RenormHead)
	set(&opts.Deploy, b.Deploy)

	if hclutil.IsExprDefined(ctx, b.DatasetParams, "dataset_params") {
		params, moreDiags := datasetParams(b.DatasetParams)
		diags = append(diags, moreDiags...)
		opts.DatasetParams = params
	}

	network := &config.Network{Name: b.Name, Options: opts}

	if b.Remain != nil {
		content, moreDiags := b.Remain.Content(remainSchema)
		diags = append(diags, moreDiags...)
		if content != nil {
			block, moreDiags := hclutil.FindUniqueBlock(content.Blocks, "output")
			diags = append(diags, moreDiags...)
			if block != nil {
				out, moreDiags := translateOutput(block)
				diags = append(diags, moreDiags...)
				network.Output = out
			}
		}
	}

	return network, diags
}

// datasetParams evaluates an object or map expression into per-key values.
func datasetParams(expr hcl.Expression) (map[string]cty.Value, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, diags
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid dataset_params",
			Detail:   fmt.Sprintf("dataset_params must be an object, got %s.", val.Type().FriendlyName()),
			Subject:  expr.Range().Ptr(),
		})
	}
	if !val.IsWhollyKnown() {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid dataset_params",
			Detail:   "dataset_params must be a constant.",
			Subject:  expr.Range().Ptr(),
		})
	}
	return val.AsValueMap(), diags
}

func translateOutput(block *hcl.Block) (config.Output, hcl.Diagnostics) {
	var ob outputBlock
	diags := gohcl.DecodeBody(block.Body, nil, &ob)
	if diags.HasErrors() {
		return config.Output{}, diags
	}

	out := config.Output{Path: ob.Path, Render: ob.Render, UploadURL: ob.UploadURL}
	if s := ob.SocketIO; s != nil {
		sio := &config.SocketIO{
			URL:                s.URL,
			Namespace:          s.Namespace,
			Event:              s.Event,
			AckEvent:           s.AckEvent,
			InsecureSkipVerify: s.InsecureSkipVerify,
		}
		if s.Timeout != "" {
			d, err := time.ParseDuration(s.Timeout)
			if err != nil {
				diags = append(diags, diagErr("Invalid socketio timeout", err, block.DefRange))
			}
			sio.Timeout = d
		}
		out.SocketIO = sio
	}
	return out, diags
}

// set overwrites *dst when v was declared.
func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// diagErr wraps a plain error as a diagnostic anchored at rng.
func diagErr(summary string, err error, rng hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   err.Error(),
		Subject:  rng.Ptr(),
	}
}
