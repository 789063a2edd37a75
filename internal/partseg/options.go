// Package partseg builds SPLATNet-style part segmentation networks.
//
// Two variants exist. BuildSeq builds a network for a single ShapeNet
// category; BuildCombined builds one network over every category with the
// label space of all parts. Both emit a train/test pair of Python data
// layers (or a fixed Input in deploy mode), a stack of 1x1 convolution or
// bilateral blocks with optional skip connections, and a classification head.
package partseg

import (
	"github.com/zclconf/go-cty/cty"
)

// Options parameterizes a network. Start from DefaultOptions and override
// fields; the zero value is not usable.
type Options struct {
	// Name, when set, is written as the net's name header.
	Name string
	// Arch lists block widths, e.g. `64_b128_c256`.
	Arch      string
	BatchNorm bool
	// Skips are `to_from[_opts]` skip connection entries.
	Skips []string
	// BilateralNeighborhood is the permutohedral neighborhood size.
	BilateralNeighborhood int
	ConvFiller            string
	BilateralFiller       string

	Dataset       string
	DatasetParams map[string]cty.Value
	// Category is a ShapeNet category name or synset id. Ignored by the
	// combined variant.
	Category   string
	SampleSize int
	BatchSize  int

	// FeatDims are the channels fed to the first block, with scales.
	FeatDims string
	// Lattices are the lattice channels, one per bilateral block or a
	// single entry shared by all of them.
	Lattices []string

	// Combined selects the all-categories variant in Build.
	Combined bool
	// RenormClass makes the combined data layer emit a label mask.
	RenormClass bool
	// RenormHead replaces the combined loss with a mask renormalized
	// softmax and a log loss. It requires RenormClass.
	RenormHead bool

	// Deploy replaces the data layers with a fixed Input and the loss with
	// a softmax.
	Deploy bool
}

// DefaultOptions returns the options of the reference network.
func DefaultOptions() Options {
	return Options{
		Arch:                  "64_128_256_256",
		BatchNorm:             true,
		BilateralNeighborhood: 1,
		ConvFiller:            "xavier",
		BilateralFiller:       "gauss_0.001",
		Dataset:               "shapenet",
		Category:              "airplane",
		SampleSize:            3000,
		BatchSize:             32,
		FeatDims:              "x_y_z",
	}
}
