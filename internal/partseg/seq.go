package partseg

import (
	"context"

	"github.com/specialistvlad/partsegnet/internal/archspec"
	"github.com/specialistvlad/partsegnet/internal/dataset"
	"github.com/specialistvlad/partsegnet/internal/netspec"
)

// BuildSeq builds the network for a single ShapeNet category.
func BuildSeq(ctx context.Context, opts Options) (*netspec.Net, error) {
	p, err := newPlan(opts)
	if err != nil {
		return nil, err
	}
	cat, err := dataset.ResolveCategory(opts.Category)
	if err != nil {
		return nil, err
	}
	nclass := cat.Parts

	b := newBuilder(ctx, opts, p)
	b.logger.Debug("Building per-category network.",
		"category", cat.Name, "synset", cat.Synset, "classes", nclass, "arch", archspec.FormatArch(p.blocks))

	params, err := dataset.NewShapeNetParams(opts.DatasetParams, dataset.ShapeNetConfig{
		InputDims:  joinDims(p.inputDims),
		SampleSize: opts.SampleSize,
		BatchSize:  opts.BatchSize,
		Category:   cat.Synset,
	})
	if err != nil {
		return nil, err
	}
	if opts.Deploy {
		b.deployInput()
	} else {
		tops := []netspec.Top{blobData, blobLabel}
		b.dataLayers(dataset.LayerPerCategory, tops, tops, params)
	}

	top, idx := b.blocks(b.features())
	top = b.head(top, idx, nclass)

	if opts.Deploy {
		b.add(netspec.Softmax("prob", top))
	} else {
		b.add(netspec.SoftmaxWithLoss("loss", top, blobLabel))
		b.add(netspec.Accuracy("accuracy", top, blobLabel))
	}
	return b.finish("per-category")
}
