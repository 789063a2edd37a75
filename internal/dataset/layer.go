package dataset

import (
	"github.com/zclconf/go-cty/cty"
)

// ShapeNet data layer plugin names.
const (
	LayerModule        = "dataset_shapenet"
	LayerPerCategory   = "InputShapenet"
	LayerAllCategories = "InputShapenetAllCategories"
	defaultSubsetTrain = "train"
	defaultSubsetTest  = "val"
	keySubset          = "subset"
	keySubsetTrain     = "subset_train"
	keySubsetTest      = "subset_test"
	keyFeatDims        = "feat_dims"
	keySampleSize      = "sample_size"
	keyBatchSize       = "batch_size"
	keyCategory        = "category"
	keyOutputMask      = "output_mask"
	keyJitterXYZ       = "jitter_xyz"
	keyJitterRotation  = "jitter_rotation"
	keyJitterStretch   = "jitter_stretch"
)

// augmentations are switched off in the test-phase data layer.
var augmentations = []string{keyJitterXYZ, keyJitterStretch, keyJitterRotation}

// ShapeNetConfig carries the values the network builder forces into the
// data layer parameters.
type ShapeNetConfig struct {
	// InputDims is the underscore-joined list of raw input channels.
	InputDims  string
	SampleSize int
	BatchSize  int
	// Category is the synset id for per-category networks; empty for
	// networks trained on every category.
	Category string
	// OutputMask is set for all-category networks only.
	OutputMask *bool
}

// NewShapeNetParams merges user supplied parameters over the defaults and
// applies the forced values and type casts. User keys are applied in
// lexical order.
func NewShapeNetParams(user map[string]cty.Value, cfg ShapeNetConfig) (*Params, error) {
	p := NewParams()
	p.Set(keySubsetTrain, cty.StringVal(defaultSubsetTrain))
	p.Set(keySubsetTest, cty.StringVal(defaultSubsetTest))
	for _, k := range sortedKeys(user) {
		p.Set(k, user[k])
	}

	p.Set(keyFeatDims, cty.StringVal(cfg.InputDims))
	p.SetInt(keySampleSize, cfg.SampleSize)
	p.SetInt(keyBatchSize, cfg.BatchSize)
	if cfg.Category != "" {
		p.Set(keyCategory, cty.StringVal(cfg.Category))
	}
	if cfg.OutputMask != nil {
		p.Set(keyOutputMask, cty.BoolVal(*cfg.OutputMask))
	}

	for _, k := range []string{keyJitterXYZ, keyJitterRotation, keyJitterStretch} {
		if err := p.castFloat(k); err != nil {
			return nil, err
		}
	}
	for _, k := range []string{keySampleSize, keyBatchSize} {
		if err := p.castInt(k); err != nil {
			return nil, err
		}
	}
	if err := p.castBool(keyOutputMask); err != nil {
		return nil, err
	}
	return p, nil
}

// Split derives the train-phase and test-phase parameters. The test phase
// reads the test subset and disables every augmentation.
func (p *Params) Split() (train, test *Params) {
	subsetTrain, _ := p.Get(keySubsetTrain)
	subsetTest, _ := p.Get(keySubsetTest)

	train = p.Clone()
	train.Set(keySubset, subsetTrain)
	train.Delete(keySubsetTrain)
	train.Delete(keySubsetTest)

	test = p.Clone()
	test.Set(keySubset, subsetTest)
	for _, k := range augmentations {
		test.SetFloat(k, 0)
	}
	test.Delete(keySubsetTrain)
	test.Delete(keySubsetTest)
	return train, test
}
