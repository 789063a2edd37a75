// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the parts shared by both network variants: option
// resolution into a plan, and the block loop that turns the architecture
// string into layers.
package partseg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/specialistvlad/partsegnet/internal/archspec"
	"github.com/specialistvlad/partsegnet/internal/ctxlog"
	"github.com/specialistvlad/partsegnet/internal/dataset"
	"github.com/specialistvlad/partsegnet/internal/netspec"
)

// Python plugin modules and layers referenced by the generated networks.
const (
	customModule       = "custom_layers"
	layerPickAndScale  = "PickAndScale"
	layerGlobalPooling = "GlobalPooling"
	layerProbRenorm    = "ProbRenorm"
	layerLogLoss       = "LogLoss"
)

// Blob names shared by the data layers and the head.
const (
	blobData           netspec.Top = "data"
	blobLabel          netspec.Top = "label"
	blobCategoryLabels netspec.Top = "category_labels"
	blobLabelMask      netspec.Top = "label_mask"
)

// ErrInvalidOptions wraps option combinations that cannot produce a network.
var ErrInvalidOptions = errors.New("invalid network options")

// Build dispatches to BuildCombined or BuildSeq.
func Build(ctx context.Context, opts Options) (*netspec.Net, error) {
	if opts.Combined {
		return BuildCombined(ctx, opts)
	}
	return BuildSeq(ctx, opts)
}

// plan is the resolved form of Options shared by both variants.
type plan struct {
	blocks []archspec.Block
	skips  archspec.Skips
	// inputDims are the raw channels the data layer must provide.
	inputDims []string
	// featDims and lattices are rewritten to indices into inputDims.
	featDims   string
	lattices   []string
	convFiller archspec.Filler
	bltrFiller archspec.Filler
}

func newPlan(opts Options) (*plan, error) {
	blocks, err := archspec.ParseArch(opts.Arch)
	if err != nil {
		return nil, err
	}
	skips, err := archspec.ParseSkips(opts.Skips)
	if err != nil {
		return nil, err
	}
	if opts.BilateralNeighborhood < 0 {
		return nil, fmt.Errorf("%w: bilateral neighborhood %d is negative", ErrInvalidOptions, opts.BilateralNeighborhood)
	}
	if opts.SampleSize <= 0 || opts.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: sample size and batch size must be positive", ErrInvalidOptions)
	}

	p := &plan{blocks: blocks, skips: skips}

	featNames, err := archspec.ChannelNames(opts.FeatDims)
	if err != nil {
		return nil, fmt.Errorf("feature dims: %w", err)
	}
	p.inputDims = featNames

	if nb := archspec.CountBilateral(blocks); nb > 0 {
		lattices, err := archspec.ExpandLattices(opts.Lattices, nb)
		if err != nil {
			return nil, err
		}
		lists := [][]string{featNames}
		for _, l := range lattices {
			names, err := archspec.ChannelNames(l)
			if err != nil {
				return nil, fmt.Errorf("lattice dims: %w", err)
			}
			lists = append(lists, names)
		}
		p.inputDims = archspec.MergeChannels(lists...)
		for _, l := range lattices {
			mapped, err := archspec.MapChannels(l, p.inputDims)
			if err != nil {
				return nil, err
			}
			p.lattices = append(p.lattices, mapped)
		}
	}

	if p.featDims, err = archspec.MapChannels(opts.FeatDims, p.inputDims); err != nil {
		return nil, err
	}
	if err := dataset.Lookup(opts.Dataset); err != nil {
		return nil, err
	}
	if p.convFiller, err = archspec.ParseFiller(opts.ConvFiller); err != nil {
		return nil, fmt.Errorf("conv filler: %w", err)
	}
	if p.bltrFiller, err = archspec.ParseGaussFiller(opts.BilateralFiller); err != nil {
		return nil, fmt.Errorf("bilateral filler: %w", err)
	}
	return p, nil
}

// builder appends layers to a net and keeps the first error, so the build
// functions read as a straight sequence of layers.
type builder struct {
	net    *netspec.Net
	opts   Options
	plan   *plan
	logger *slog.Logger
	err    error
}

func newBuilder(ctx context.Context, opts Options, p *plan) *builder {
	return &builder{
		net:    netspec.New(opts.Name),
		opts:   opts,
		plan:   p,
		logger: ctxlog.FromContext(ctx),
	}
}

// add appends l and returns its first top.
func (b *builder) add(l *netspec.Layer) netspec.Top {
	if b.err == nil {
		if err := b.net.Add(l); err != nil {
			b.err = fmt.Errorf("adding layer %q: %w", l.Name, err)
		}
	}
	return l.Top(0)
}

// dataLayers adds the train and test Python data layers.
func (b *builder) dataLayers(layer string, trainTops, testTops []netspec.Top, params *dataset.Params) {
	train, test := params.Split()
	trainRepr, err := train.Repr()
	if err != nil {
		b.setErr(err)
		return
	}
	testRepr, err := test.Repr()
	if err != nil {
		b.setErr(err)
		return
	}
	b.add(netspec.Python("data", dataset.LayerModule, layer, trainRepr).
		WithTops(trainTops...).WithPhase(netspec.PhaseTrain))
	b.add(netspec.Python("data", dataset.LayerModule, layer, testRepr).
		WithTops(testTops...).WithPhase(netspec.PhaseTest))
}

// deployInput adds the fixed-shape input replacing the data layers.
func (b *builder) deployInput() {
	b.add(netspec.Input(string(blobData), 1, len(b.plan.inputDims), 1, b.opts.SampleSize))
}

// features adds the layer picking the scaled feature channels out of data.
func (b *builder) features() netspec.Top {
	return b.add(netspec.Python("data_feat", customModule, layerPickAndScale, b.plan.featDims, blobData))
}

type latticeEntry struct {
	data    netspec.Top
	lattice netspec.Top
}

// blocks adds one conv(-bn)-relu block per architecture entry plus the skip
// joins, and returns the last blob with the index the head conv takes.
func (b *builder) blocks(top netspec.Top) (netspec.Top, int) {
	p := b.plan
	for _, to := range p.skips.Targets() {
		if to > len(p.blocks) {
			b.logger.Warn("Skip connection target is past the last block, ignoring.", "target", to, "blocks", len(p.blocks))
		}
	}

	lattices := make(map[string]latticeEntry)
	lastInBlock := make(map[int]netspec.Top)
	bltrIdx := 0
	idx := 1
	for _, blk := range p.blocks {
		suffix := strconv.Itoa(idx)
		conv := "conv" + suffix

		switch blk.Kind {
		case archspec.Conv:
			b.add(netspec.Convolution(conv, top, blk.Outputs, p.convFiller))
		case archspec.Bilateral:
			key := p.lattices[bltrIdx]
			cfg := netspec.PermutohedralConfig{
				NumOutput:        blk.Outputs,
				NeighborhoodSize: b.opts.BilateralNeighborhood,
				Filter:           p.bltrFiller,
			}
			entry, seen := lattices[key]
			if seen {
				cfg.LatticeIn = entry.lattice
			} else {
				k := strconv.Itoa(len(lattices))
				entry.data = b.add(netspec.Python("data_lattice"+k, customModule, layerPickAndScale, key, blobData))
				if countOf(p.lattices, key) > 1 {
					entry.lattice = netspec.Top("lattice" + k)
					cfg.LatticeOut = entry.lattice
				}
				lattices[key] = entry
			}
			b.add(netspec.Permutohedral(conv, top, entry.data, cfg))
			bltrIdx++
		}
		top = netspec.Top(conv)

		if b.opts.BatchNorm {
			top = b.add(netspec.BatchNorm("bn"+suffix, top))
		}
		// ReLU runs in place, so top keeps naming the same blob.
		b.add(netspec.ReLU("relu"+suffix, top))

		if g := p.skips.For(idx); g != nil {
			if g.GlobalPool {
				top = b.add(netspec.Python("gpool"+suffix, customModule, layerGlobalPooling, "", top))
			}
			bottoms := []netspec.Top{top}
			// Sources always precede the target, so each has an entry.
			for _, from := range g.Sources {
				bottoms = append(bottoms, lastInBlock[from])
			}
			if g.Add {
				top = b.add(netspec.EltwiseSum("add"+suffix, bottoms...))
			} else {
				top = b.add(netspec.Concat("concat"+suffix, bottoms...))
			}
		}

		b.logger.Debug("Emitted block.", "index", idx, "block", blk.String(), "output", top)
		lastInBlock[idx] = top
		idx++
	}
	return top, idx
}

// head adds the classification conv over nclass labels.
func (b *builder) head(top netspec.Top, idx, nclass int) netspec.Top {
	return b.add(netspec.Convolution("conv"+strconv.Itoa(idx), top, nclass, b.plan.convFiller))
}

func (b *builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// finish returns the net or the first error hit while building it.
func (b *builder) finish(variant string) (*netspec.Net, error) {
	if b.err != nil {
		return nil, fmt.Errorf("building %s network: %w", variant, b.err)
	}
	b.logger.Debug("Network built.", "variant", variant, "layers", b.net.Len(), "deploy", b.opts.Deploy)
	return b.net, nil
}

func countOf(list []string, v string) int {
	n := 0
	for _, s := range list {
		if s == v {
			n++
		}
	}
	return n
}
