// Package sink delivers generated artifacts: prototxt definitions and their
// rendered graphs. A sink is chosen per network by the configuration; every
// sink receives the full artifact bytes.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/partsegnet/internal/ctxlog"
)

// Kinds of artifact.
const (
	KindPrototxt = "prototxt"
	KindHTML     = "html"
)

// Artifact is one generated file.
type Artifact struct {
	// Network is the name of the network the artifact was generated from.
	Network string
	Kind    string
	Data    []byte
}

// Sink publishes artifacts.
type Sink interface {
	Publish(ctx context.Context, a Artifact) error
}

// Stdout writes artifacts to a stream, normally os.Stdout.
type Stdout struct {
	W io.Writer
}

// Publish implements Sink.
func (s *Stdout) Publish(ctx context.Context, a Artifact) error {
	if _, err := s.W.Write(a.Data); err != nil {
		return fmt.Errorf("writing %s of %q: %w", a.Kind, a.Network, err)
	}
	return nil
}

// File writes artifacts to Path, creating parent directories as needed.
type File struct {
	Path string
}

// Publish implements Sink.
func (s *File) Publish(ctx context.Context, a Artifact) error {
	logger := ctxlog.FromContext(ctx).With("sink", "file", "network", a.Network)

	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for '%s': %w", s.Path, err)
		}
	}
	if err := os.WriteFile(s.Path, a.Data, 0o644); err != nil {
		return fmt.Errorf("writing '%s': %w", s.Path, err)
	}
	logger.Info("Wrote artifact.", "kind", a.Kind, "path", s.Path, "size", len(a.Data))
	return nil
}

// Multi publishes to every sink in order and stops at the first error.
type Multi []Sink

// Publish implements Sink.
func (m Multi) Publish(ctx context.Context, a Artifact) error {
	for _, s := range m {
		if err := s.Publish(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
