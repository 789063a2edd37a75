package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/partsegnet/internal/ctxlog"
	"github.com/specialistvlad/partsegnet/internal/fsutil"
)

// ErrDuplicateNetwork is returned when two files declare the same network.
var ErrDuplicateNetwork = errors.New("duplicate network")

// ErrNoLoader is returned for a file whose extension no loader handles.
var ErrNoLoader = errors.New("no loader for file")

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the given files and translates them into the
	// format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// ByExtension dispatches files to loaders keyed by extension, e.g. ".hcl".
// Directories are walked for every registered extension.
type ByExtension map[string]Loader

// Load implements Loader. Paths that do not exist are skipped. Network names
// must be unique across all files.
func (b ByExtension) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	exts := make([]string, 0, len(b))
	for ext := range b {
		exts = append(exts, ext)
	}
	slices.Sort(exts)

	grouped := make(map[string][]string)
	seen := make(map[string]struct{})
	add := func(ext, file string) {
		if _, ok := seen[file]; ok {
			return
		}
		seen[file] = struct{}{}
		grouped[ext] = append(grouped[ext], file)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("Configuration path does not exist, skipping.", "path", path)
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			ext := strings.ToLower(filepath.Ext(path))
			if _, ok := b[ext]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrNoLoader, path)
			}
			add(ext, path)
			continue
		}
		for _, ext := range exts {
			files, err := fsutil.FindFilesByExtension(path, ext)
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", path, err)
			}
			for _, f := range files {
				add(ext, f)
			}
		}
	}

	merged := &Model{}
	for _, ext := range exts {
		files := grouped[ext]
		if len(files) == 0 {
			continue
		}
		logger.Debug("Loading configuration files.", "extension", ext, "count", len(files))
		m, err := b[ext].Load(ctx, files...)
		if err != nil {
			return nil, err
		}
		if err := merged.Merge(m); err != nil {
			return nil, err
		}
	}
	logger.Debug("Configuration loading complete.", "networks", len(merged.Networks))
	return merged, nil
}

// Merge appends other's networks, rejecting names already present.
func (m *Model) Merge(other *Model) error {
	for _, n := range other.Networks {
		if existing := m.Network(n.Name); existing != nil {
			return fmt.Errorf("%w %q: declared in %s and %s", ErrDuplicateNetwork, n.Name, existing.Source, n.Source)
		}
		m.Networks = append(m.Networks, n)
	}
	return nil
}

// Network returns the network with the given name, or nil.
func (m *Model) Network(name string) *Network {
	for _, n := range m.Networks {
		if n.Name == name {
			return n
		}
	}
	return nil
}
