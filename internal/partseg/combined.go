package partseg

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/partsegnet/internal/archspec"
	"github.com/specialistvlad/partsegnet/internal/dataset"
	"github.com/specialistvlad/partsegnet/internal/netspec"
)

// BuildCombined builds one network over the parts of every ShapeNet
// category. The head conv is followed by a global pooling layer and the loss
// is computed against the per-sample category labels.
func BuildCombined(ctx context.Context, opts Options) (*netspec.Net, error) {
	if opts.RenormHead && !opts.RenormClass {
		return nil, fmt.Errorf("%w: the renormalized head needs the label mask, enable renorm_class", ErrInvalidOptions)
	}
	p, err := newPlan(opts)
	if err != nil {
		return nil, err
	}
	nclass := dataset.TotalParts()

	b := newBuilder(ctx, opts, p)
	b.logger.Debug("Building all-categories network.",
		"classes", nclass, "arch", archspec.FormatArch(p.blocks), "renorm_class", opts.RenormClass)

	renorm := opts.RenormClass
	params, err := dataset.NewShapeNetParams(opts.DatasetParams, dataset.ShapeNetConfig{
		InputDims:  joinDims(p.inputDims),
		SampleSize: opts.SampleSize,
		BatchSize:  opts.BatchSize,
		OutputMask: &renorm,
	})
	if err != nil {
		return nil, err
	}
	if opts.Deploy {
		b.deployInput()
		if renorm {
			b.add(netspec.Input(string(blobLabelMask), 1, nclass, 1, 1))
		}
	} else {
		trainTops := []netspec.Top{blobData, blobLabel, blobCategoryLabels}
		testTops := []netspec.Top{blobData, blobLabel}
		if renorm {
			trainTops = append(trainTops, blobLabelMask)
			testTops = append(testTops, blobLabelMask)
		}
		b.dataLayers(dataset.LayerAllCategories, trainTops, testTops, params)
	}

	top, idx := b.blocks(b.features())
	top = b.head(top, idx, nclass)
	top = b.add(netspec.Python("gpool_final", customModule, layerGlobalPooling, "", top))

	switch {
	case opts.Deploy:
		b.add(netspec.Softmax("prob", top))
	case opts.RenormHead:
		raw := b.add(netspec.Softmax("prob_raw", top))
		prob := b.add(netspec.Python("prob", customModule, layerProbRenorm, "", raw, blobLabelMask))
		b.add(netspec.Python("loss", customModule, layerLogLoss, "", prob, blobLabel).WithLossWeight(1))
		b.add(netspec.Accuracy("accuracy", prob, blobLabel))
	default:
		b.add(netspec.SoftmaxWithLoss("loss", top, blobCategoryLabels))
	}
	return b.finish("all-categories")
}

func joinDims(dims []string) string {
	return strings.Join(dims, "_")
}
