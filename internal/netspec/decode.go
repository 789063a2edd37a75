package netspec

import (
	"fmt"
	"io"

	"github.com/specialistvlad/partsegnet/internal/prototxt"
)

// FromProto rebuilds a Net from a decoded NetParameter message. Layers go
// through Add, so a file whose layers read blobs before they exist is
// rejected.
func FromProto(m *prototxt.Message) (*Net, error) {
	name, _ := m.StringField("name")
	n := New(name)
	for i, lm := range m.Messages("layer") {
		l, err := layerFromProto(lm)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := n.Add(l); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return n, nil
}

// Read decodes prototxt from r into a Net.
func Read(r io.Reader) (*Net, error) {
	m, err := prototxt.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromProto(m)
}

func layerFromProto(m *prototxt.Message) (*Layer, error) {
	l := &Layer{Body: prototxt.New()}
	for _, f := range m.Fields {
		switch f.Key {
		case "name":
			s, ok := f.Value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: name must be a string", ErrInvalidLayer)
			}
			l.Name = s
		case "type":
			s, ok := f.Value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: type must be a string", ErrInvalidLayer)
			}
			l.Type = s
		case "bottom", "top":
			s, ok := f.Value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidLayer, f.Key)
			}
			if f.Key == "bottom" {
				l.Bottoms = append(l.Bottoms, Top(s))
			} else {
				l.Tops = append(l.Tops, Top(s))
			}
		case "loss_weight":
			w, ok := number(f.Value)
			if !ok {
				return nil, fmt.Errorf("%w: loss_weight must be a number", ErrInvalidLayer)
			}
			l.LossWeight = &w
		case "param":
			sub, ok := f.Value.(*prototxt.Message)
			if !ok {
				return nil, fmt.Errorf("%w: param must be a block", ErrInvalidLayer)
			}
			var ps ParamSpec
			if v, ok := sub.Number("lr_mult"); ok {
				ps.LRMult = v
			}
			if v, ok := sub.Number("decay_mult"); ok {
				ps.DecayMult = &v
			}
			l.Params = append(l.Params, ps)
		case "include":
			sub, ok := f.Value.(*prototxt.Message)
			if !ok {
				return nil, fmt.Errorf("%w: include must be a block", ErrInvalidLayer)
			}
			for _, v := range sub.Get("phase") {
				if e, ok := v.(prototxt.Enum); ok {
					l.Phase = Phase(e)
				}
			}
		default:
			l.Body.Fields = append(l.Body.Fields, f)
		}
	}
	return l, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case prototxt.Float:
		return float64(n), true
	}
	return 0, false
}
