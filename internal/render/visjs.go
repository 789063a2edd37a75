// Package render draws a network as an interactive vis.js graph.
package render

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/partsegnet/internal/netspec"
)

type nodeShape string

var (
	ShapeBox      nodeShape = "box"
	ShapeEllipse  nodeShape = "ellipse"
	ShapeDiamond  nodeShape = "diamond"
	ShapeDatabase nodeShape = "database"

	ColorGreen  = color{Background: "#6ef091", Highlight: highlight{Background: "#ccffda"}}
	ColorBlue   = color{Background: "#7fb3f5", Highlight: highlight{Background: "#d2e5ff"}}
	ColorPurple = color{Background: "#b99cf0", Highlight: highlight{Background: "#e6dbff"}}
	ColorGrey   = color{Background: "#d6d6d6", Highlight: highlight{Background: "#f0f0f0"}}
	ColorOrange = color{Background: "#f5b870", Highlight: highlight{Background: "#ffe3c2"}}
	ColorRed    = color{Background: "#f08a8a", Highlight: highlight{Background: "#ffd6d6"}}
)

type highlight struct {
	Background string `json:"background"`
}
type color struct {
	Background string    `json:"background"`
	Highlight  highlight `json:"highlight"`
}

type Node struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Shape nodeShape `json:"shape"`
	Color color     `json:"color"`
	Type  string    `json:"type"`
	Title string    `json:"title,omitempty"`
}

type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Arrows string `json:"arrows"`
	Dashes bool   `json:"dashes,omitempty"`
	Title  string `json:"title,omitempty"`
}

// style picks the node look by layer family.
func style(l *netspec.Layer) (nodeShape, color) {
	switch l.Type {
	case "Input":
		return ShapeDatabase, ColorGreen
	case "Convolution":
		return ShapeBox, ColorBlue
	case "Permutohedral":
		return ShapeBox, ColorPurple
	case "BatchNorm", "ReLU":
		return ShapeEllipse, ColorGrey
	case "Concat", "Eltwise":
		return ShapeDiamond, ColorOrange
	case "Softmax", "SoftmaxWithLoss", "Accuracy":
		return ShapeBox, ColorRed
	case "Python":
		if len(l.Bottoms) == 0 {
			return ShapeDatabase, ColorGreen
		}
		return ShapeEllipse, ColorGrey
	}
	return ShapeBox, color{}
}

// CreateNetwork maps every layer to a node and every producer/consumer pair
// to an edge titled with the blobs passed along it. Edges into phase
// specific layers are dashed.
func CreateNetwork(ctx context.Context, net *netspec.Net) ([]Node, []Edge, error) {
	store, err := net.Topology(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("building layer topology: %w", err)
	}

	var nodes []Node
	var edges []Edge
	for _, l := range net.Layers() {
		shape, c := style(l)
		label := l.Name
		if l.Phase != netspec.PhaseAll {
			label += " (" + string(l.Phase) + ")"
		}
		nodes = append(nodes, Node{
			ID:    l.ID(),
			Label: label,
			Shape: shape,
			Color: c,
			Type:  l.Type,
			Title: fmt.Sprintf("%s: %v -> %v", l.Type, l.Bottoms, l.Tops),
		})

		deps, err := store.DependenciesOf(ctx, l.ID())
		if err != nil {
			return nil, nil, err
		}
		for _, from := range deps {
			producer, _ := net.Layer(from)
			edges = append(edges, Edge{
				From:   from,
				To:     l.ID(),
				Arrows: "to",
				Dashes: l.Phase != netspec.PhaseAll || producer.Phase != netspec.PhaseAll,
				Title:  sharedBlobs(producer, l),
			})
		}
	}
	return nodes, edges, nil
}

// sharedBlobs names the blobs consumer reads from producer.
func sharedBlobs(producer, consumer *netspec.Layer) string {
	var names []string
	for _, b := range consumer.Bottoms {
		if slices.Contains(producer.Tops, b) && !slices.Contains(names, string(b)) {
			names = append(names, string(b))
		}
	}
	return strings.Join(names, ", ")
}
