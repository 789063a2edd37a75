// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Layer type and the constructors for every layer type
// the part segmentation networks use. Constructors only describe a layer;
// nothing is checked until the layer is added to a Net.
package netspec

import (
	"github.com/specialistvlad/partsegnet/internal/archspec"
	"github.com/specialistvlad/partsegnet/internal/prototxt"
)

// Phase restricts a layer to the train or test network.
type Phase string

const (
	// PhaseAll marks layers present in both networks.
	PhaseAll   Phase = ""
	PhaseTrain Phase = "TRAIN"
	PhaseTest  Phase = "TEST"
)

// Top names a blob produced by a layer.
type Top string

// ParamSpec sets the learning rate and weight decay multipliers of one
// learnable blob.
type ParamSpec struct {
	LRMult    float64
	DecayMult *float64
}

// Layer is one node of the network.
type Layer struct {
	Name       string
	Type       string
	Bottoms    []Top
	Tops       []Top
	Phase      Phase
	LossWeight *float64
	Params     []ParamSpec
	// Body holds the type specific fields, e.g. a convolution_param block.
	Body *prototxt.Message
}

// Top returns the i-th output blob.
func (l *Layer) Top(i int) Top {
	return l.Tops[i]
}

// InPlace reports whether the layer overwrites its input blob.
func (l *Layer) InPlace() bool {
	return len(l.Bottoms) == 1 && len(l.Tops) == 1 && l.Bottoms[0] == l.Tops[0]
}

// ID is unique within a Net: layers restricted to one phase may share a
// name with a layer of the other phase.
func (l *Layer) ID() string {
	if l.Phase == PhaseAll {
		return l.Name
	}
	return l.Name + "@" + string(l.Phase)
}

// WithPhase restricts l to phase p.
func (l *Layer) WithPhase(p Phase) *Layer {
	l.Phase = p
	return l
}

// WithTops replaces the output blobs of l.
func (l *Layer) WithTops(tops ...Top) *Layer {
	l.Tops = tops
	return l
}

// WithLossWeight sets an explicit loss weight.
func (l *Layer) WithLossWeight(w float64) *Layer {
	l.LossWeight = &w
	return l
}

func newLayer(name, typ string, bottoms ...Top) *Layer {
	return &Layer{
		Name:    name,
		Type:    typ,
		Bottoms: bottoms,
		Tops:    []Top{Top(name)},
		Body:    prototxt.New(),
	}
}

// Input declares a fixed-shape network input.
func Input(name string, dims ...int) *Layer {
	l := newLayer(name, "Input")
	l.Body.AddMessage("input_param", func(p *prototxt.Message) {
		p.AddMessage("shape", func(s *prototxt.Message) {
			for _, d := range dims {
				s.Add("dim", d)
			}
		})
	})
	return l
}

// Python runs a layer implemented in a Python module. An empty paramStr is
// omitted.
func Python(name, module, layer, paramStr string, bottoms ...Top) *Layer {
	l := newLayer(name, "Python", bottoms...)
	l.Body.AddMessage("python_param", func(p *prototxt.Message) {
		p.Add("module", module).Add("layer", layer)
		if paramStr != "" {
			p.Add("param_str", paramStr)
		}
	})
	return l
}

// Convolution is a 1x1 convolution with a zero bias.
func Convolution(name string, bottom Top, numOutput int, weight archspec.Filler) *Layer {
	l := newLayer(name, "Convolution", bottom)
	l.Params = []ParamSpec{{LRMult: 1}, {LRMult: 0.1}}
	l.Body.AddMessage("convolution_param", func(p *prototxt.Message) {
		p.Add("num_output", numOutput).
			Add("pad", 0).
			Add("kernel_size", 1).
			Add("stride", 1).
			Add("weight_filler", FillerMessage(weight)).
			Add("bias_filler", FillerMessage(archspec.ConstantFiller(0)))
	})
	return l
}

// PermutohedralConfig parameterizes a bilateral convolution.
type PermutohedralConfig struct {
	NumOutput        int
	NeighborhoodSize int
	Filter           archspec.Filler
	// LatticeIn is a lattice blob built by an earlier block, if any.
	LatticeIn Top
	// LatticeOut, when set, exposes the lattice this layer builds as a
	// second top for later blocks.
	LatticeOut Top
}

// Permutohedral filters bottom on the lattice spanned by features.
func Permutohedral(name string, bottom, features Top, cfg PermutohedralConfig) *Layer {
	bottoms := []Top{bottom, features, features}
	if cfg.LatticeIn != "" {
		bottoms = append(bottoms, cfg.LatticeIn)
	}
	l := newLayer(name, "Permutohedral", bottoms...)
	if cfg.LatticeOut != "" {
		l.Tops = append(l.Tops, cfg.LatticeOut)
	}
	decay, noDecay := 1.0, 0.0
	l.Params = []ParamSpec{{LRMult: 1, DecayMult: &decay}, {LRMult: 2, DecayMult: &noDecay}}
	l.Body.AddMessage("permutohedral_param", func(p *prototxt.Message) {
		p.Add("num_output", cfg.NumOutput).
			Add("group", 1).
			Add("neighborhood_size", cfg.NeighborhoodSize).
			Add("bias_term", true).
			Add("norm_type", prototxt.Enum("AFTER")).
			Add("offset_type", prototxt.Enum("NONE")).
			Add("filter_filler", FillerMessage(cfg.Filter)).
			Add("bias_filler", FillerMessage(archspec.ConstantFiller(0)))
	})
	return l
}

// BatchNorm normalizes bottom with running statistics.
func BatchNorm(name string, bottom Top) *Layer {
	return newLayer(name, "BatchNorm", bottom)
}

// ReLU rectifies bottom in place.
func ReLU(name string, bottom Top) *Layer {
	l := newLayer(name, "ReLU", bottom)
	l.Tops = []Top{bottom}
	return l
}

// EltwiseSum adds its bottoms element-wise.
func EltwiseSum(name string, bottoms ...Top) *Layer {
	l := newLayer(name, "Eltwise", bottoms...)
	l.Body.AddMessage("eltwise_param", func(p *prototxt.Message) {
		p.Add("operation", prototxt.Enum("SUM"))
	})
	return l
}

// Concat stacks its bottoms along the channel axis.
func Concat(name string, bottoms ...Top) *Layer {
	return newLayer(name, "Concat", bottoms...)
}

// Softmax turns scores into probabilities.
func Softmax(name string, bottom Top) *Layer {
	return newLayer(name, "Softmax", bottom)
}

// SoftmaxWithLoss is the multinomial logistic loss over softmax scores.
func SoftmaxWithLoss(name string, scores, labels Top) *Layer {
	return newLayer(name, "SoftmaxWithLoss", scores, labels)
}

// Accuracy reports top-1 accuracy of scores against labels.
func Accuracy(name string, scores, labels Top) *Layer {
	return newLayer(name, "Accuracy", scores, labels)
}
