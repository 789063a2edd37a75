package yamlconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/partsegnet/internal/config"
	"github.com/specialistvlad/partsegnet/internal/ctxlog"
	"github.com/specialistvlad/partsegnet/internal/partseg"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

func mapNetwork(ctx context.Context, n yamlNetwork) (*config.Network, error) {
	if n.Name == "" {
		return nil, errors.New("name is required")
	}
	ctxlog.FromContext(ctx).Debug("Mapping YAML network to internal config model.", "network", n.Name)

	opts := partseg.DefaultOptions()
	opts.Name = n.Name
	set(&opts.Arch, n.Arch)
	set(&opts.BatchNorm, n.BatchNorm)
	if n.Skips != nil {
		opts.Skips = n.Skips
	}
	set(&opts.BilateralNeighborhood, n.BilateralNeighborhood)
	set(&opts.ConvFiller, n.ConvFiller)
	set(&opts.BilateralFiller, n.BilateralFiller)
	set(&opts.Dataset, n.Dataset)
	set(&opts.Category, n.Category)
	set(&opts.SampleSize, n.SampleSize)
	set(&opts.BatchSize, n.BatchSize)
	set(&opts.FeatDims, n.FeatDims)
	if n.Lattices != nil {
		opts.Lattices = n.Lattices
	}
	set(&opts.Combined, n.Combined)
	set(&opts.RenormClass, n.RenormClass)
	set(&opts.RenormHead, n.RenormHead)
	set(&opts.Deploy, n.Deploy)

	if len(n.DatasetParams) > 0 {
		params, err := datasetParams(n.DatasetParams)
		if err != nil {
			return nil, fmt.Errorf("dataset_params of %q: %w", n.Name, err)
		}
		opts.DatasetParams = params
	}

	network := &config.Network{Name: n.Name, Options: opts}
	if n.Output != nil {
		out, err := mapOutput(*n.Output)
		if err != nil {
			return nil, fmt.Errorf("output of %q: %w", n.Name, err)
		}
		network.Output = out
	}
	return network, nil
}

// datasetParams goes through JSON so numbers keep their decimal text, the
// same way an HCL literal does.
func datasetParams(raw map[string]any) (map[string]cty.Value, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	ty, err := ctyjson.ImpliedType(b)
	if err != nil {
		return nil, err
	}
	val, err := ctyjson.Unmarshal(b, ty)
	if err != nil {
		return nil, err
	}
	return val.AsValueMap(), nil
}

func mapOutput(o yamlOutput) (config.Output, error) {
	out := config.Output{Path: o.Path, Render: o.Render, UploadURL: o.UploadURL}
	if s := o.SocketIO; s != nil {
		if s.URL == "" {
			return config.Output{}, errors.New("socketio.url is required")
		}
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
				return config.Output{}, fmt.Errorf("socketio.timeout: %w", err)
			}
			sio.Timeout = d
		}
		out.SocketIO = sio
	}
	return out, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
