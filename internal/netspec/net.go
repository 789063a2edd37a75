// Package netspec builds Caffe network definitions layer by layer and turns
// them into prototxt.
//
// A Net is append-only. Every layer added must consume blobs that earlier
// layers produced, so the insertion order is always a valid execution order.
package netspec

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/partsegnet/internal/inmemorytopology"
	"github.com/specialistvlad/partsegnet/internal/prototxt"
	"github.com/specialistvlad/partsegnet/internal/topologystore"
)

var (
	// ErrDuplicateLayer is returned when a layer name is already taken.
	ErrDuplicateLayer = errors.New("duplicate layer")
	// ErrUnknownBlob is returned when a layer consumes a blob nobody produced.
	ErrUnknownBlob = errors.New("unknown blob")
	// ErrInvalidLayer is returned for structurally broken layers.
	ErrInvalidLayer = errors.New("invalid layer")
)

// Net is an ordered collection of layers.
type Net struct {
	// Name is written as the net's name header when set.
	Name   string
	layers []*Layer
	ids    map[string]*Layer
	names  map[string][]Phase
	// producers tracks, per blob, the latest layer writing it in each phase.
	producers map[Top]map[Phase]*Layer
}

// New returns an empty net.
func New(name string) *Net {
	return &Net{
		Name:      name,
		ids:       make(map[string]*Layer),
		names:     make(map[string][]Phase),
		producers: make(map[Top]map[Phase]*Layer),
	}
}

// Add appends l after checking that its name is free and that every bottom
// is visible in l's phase.
func (n *Net) Add(l *Layer) error {
	if l.Name == "" || l.Type == "" {
		return fmt.Errorf("%w: layer needs a name and a type", ErrInvalidLayer)
	}
	if len(l.Tops) == 0 {
		return fmt.Errorf("%w: layer %q has no tops", ErrInvalidLayer, l.Name)
	}
	if err := n.checkName(l); err != nil {
		return err
	}
	for _, b := range l.Bottoms {
		if len(visible(n.producers, b, l.Phase)) == 0 {
			return fmt.Errorf("%w: layer %q reads %q before any layer produces it", ErrUnknownBlob, l.Name, b)
		}
	}

	n.layers = append(n.layers, l)
	n.ids[l.ID()] = l
	n.names[l.Name] = append(n.names[l.Name], l.Phase)
	produce(n.producers, l)
	return nil
}

// checkName allows a name to repeat only across the two phases.
func (n *Net) checkName(l *Layer) error {
	for _, p := range n.names[l.Name] {
		if p == PhaseAll || l.Phase == PhaseAll || p == l.Phase {
			return fmt.Errorf("%w: %q", ErrDuplicateLayer, l.Name)
		}
	}
	return nil
}

// visible returns the layers whose output b a layer in phase p would read.
func visible(producers map[Top]map[Phase]*Layer, b Top, p Phase) []*Layer {
	var out []*Layer
	for _, phase := range []Phase{PhaseAll, PhaseTrain, PhaseTest} {
		producer, ok := producers[b][phase]
		if !ok {
			continue
		}
		if p == PhaseAll || phase == PhaseAll || phase == p {
			out = append(out, producer)
		}
	}
	return out
}

// produce records l as the latest writer of its tops. A layer present in
// both phases shadows every earlier writer.
func produce(producers map[Top]map[Phase]*Layer, l *Layer) {
	for _, t := range l.Tops {
		if l.Phase == PhaseAll || producers[t] == nil {
			producers[t] = make(map[Phase]*Layer)
		}
		producers[t][l.Phase] = l
	}
}

// Layers returns the layers in insertion order.
func (n *Net) Layers() []*Layer {
	return n.layers
}

// Len returns the number of layers.
func (n *Net) Len() int {
	return len(n.layers)
}

// Layer returns the layer with the given ID.
func (n *Net) Layer(id string) (*Layer, bool) {
	l, ok := n.ids[id]
	return l, ok
}

// Proto converts the net into a NetParameter message.
func (n *Net) Proto() *prototxt.Message {
	m := prototxt.New()
	if n.Name != "" {
		m.Add("name", n.Name)
	}
	for _, l := range n.layers {
		m.Add("layer", layerProto(l))
	}
	return m
}

// layerProto writes fields in LayerParameter field-number order.
func layerProto(l *Layer) *prototxt.Message {
	m := prototxt.New().Add("name", l.Name).Add("type", l.Type)
	for _, b := range l.Bottoms {
		m.Add("bottom", string(b))
	}
	for _, t := range l.Tops {
		m.Add("top", string(t))
	}
	if l.LossWeight != nil {
		m.Add("loss_weight", *l.LossWeight)
	}
	for _, ps := range l.Params {
		m.AddMessage("param", func(p *prototxt.Message) {
			p.Add("lr_mult", ps.LRMult)
			if ps.DecayMult != nil {
				p.Add("decay_mult", *ps.DecayMult)
			}
		})
	}
	if l.Phase != PhaseAll {
		m.AddMessage("include", func(p *prototxt.Message) {
			p.Add("phase", prototxt.Enum(l.Phase))
		})
	}
	if l.Body != nil {
		m.Fields = append(m.Fields, l.Body.Fields...)
	}
	return m
}

// Bytes returns the prototxt encoding of the net.
func (n *Net) Bytes() []byte {
	return prototxt.Marshal(n.Proto())
}

// WriteTo writes the prototxt encoding of the net to w.
func (n *Net) WriteTo(w io.Writer) (int64, error) {
	c, err := w.Write(n.Bytes())
	return int64(c), err
}

// Topology builds the layer dependency graph: one node per layer, one edge
// from each producer of a bottom blob to its consumer.
func (n *Net) Topology(ctx context.Context) (*inmemorytopology.Store, error) {
	store := inmemorytopology.New()
	producers := make(map[Top]map[Phase]*Layer)
	for _, l := range n.layers {
		if err := store.AddNode(ctx, &topologystore.Node{ID: l.ID(), Type: l.Type, Phase: string(l.Phase)}); err != nil {
			return nil, err
		}
		for _, b := range l.Bottoms {
			for _, producer := range visible(producers, b, l.Phase) {
				if err := store.AddDependency(ctx, producer.ID(), l.ID()); err != nil {
					return nil, err
				}
			}
		}
		produce(producers, l)
	}
	return store, nil
}

// Validate checks that the layer graph is acyclic.
func (n *Net) Validate(ctx context.Context) error {
	store, err := n.Topology(ctx)
	if err != nil {
		return fmt.Errorf("building topology: %w", err)
	}
	if _, err := store.TopoOrder(ctx); err != nil {
		return fmt.Errorf("validating net %q: %w", n.Name, err)
	}
	return nil
}
