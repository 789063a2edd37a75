package app

import (
	"bytes"
	"context"
	"fmt"

	"github.com/specialistvlad/partsegnet/internal/config"
	"github.com/specialistvlad/partsegnet/internal/ctxlog"
	"github.com/specialistvlad/partsegnet/internal/partseg"
	"github.com/specialistvlad/partsegnet/internal/render"
	"github.com/specialistvlad/partsegnet/internal/sink"
)

// Generate builds one network, validates its graph, and publishes the
// prototxt and, when requested, the rendered graph.
func (a *App) Generate(ctx context.Context, n *config.Network) error {
	ctx = a.Context(ctx)
	ctx, logger := ctxlog.With(ctx, "network", n.Name)

	net, err := partseg.Build(ctx, n.Options)
	if err != nil {
		return fmt.Errorf("building network %q: %w", n.Name, err)
	}
	if err := net.Validate(ctx); err != nil {
		return err
	}
	logger.Debug("Network built and validated.", "layers", net.Len())

	prototxt := sink.Artifact{Network: n.Name, Kind: sink.KindPrototxt, Data: net.Bytes()}
	if err := a.prototxtSinks(n.Output).Publish(ctx, prototxt); err != nil {
		return fmt.Errorf("publishing network %q: %w", n.Name, err)
	}

	if n.Output.Render != "" {
		var page bytes.Buffer
		if err := render.WriteHTML(ctx, &page, net); err != nil {
			return fmt.Errorf("rendering network %q: %w", n.Name, err)
		}
		html := sink.Artifact{Network: n.Name, Kind: sink.KindHTML, Data: page.Bytes()}
		if err := (&sink.File{Path: n.Output.Render}).Publish(ctx, html); err != nil {
			return fmt.Errorf("publishing graph of %q: %w", n.Name, err)
		}
	}

	logger.Info("✅ Network generated.", "layers", net.Len())
	return nil
}

// prototxtSinks returns the destinations of the prototxt, falling back to
// outW when none is configured.
func (a *App) prototxtSinks(out config.Output) sink.Multi {
	if out.IsEmpty() {
		return sink.Multi{&sink.Stdout{W: a.outW}}
	}
	var sinks sink.Multi
	if out.Path != "" {
		sinks = append(sinks, &sink.File{Path: out.Path})
	}
	if out.UploadURL != "" {
		sinks = append(sinks, &sink.Upload{URL: out.UploadURL})
	}
	if s := out.SocketIO; s != nil {
		sinks = append(sinks, &sink.SocketIO{
			URL:                s.URL,
			Namespace:          s.Namespace,
			Event:              s.Event,
			AckEvent:           s.AckEvent,
			Timeout:            s.Timeout,
			InsecureSkipVerify: s.InsecureSkipVerify,
		})
	}
	return sinks
}
