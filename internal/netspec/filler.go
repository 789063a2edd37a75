package netspec

import (
	"github.com/specialistvlad/partsegnet/internal/archspec"
	"github.com/specialistvlad/partsegnet/internal/prototxt"
)

// FillerMessage converts f into a FillerParameter block. Unset fields are
// omitted.
func FillerMessage(f archspec.Filler) *prototxt.Message {
	m := prototxt.New().Add("type", f.Type)
	for _, opt := range []struct {
		key string
		v   *float64
	}{
		{"value", f.Value},
		{"min", f.Min},
		{"max", f.Max},
		{"mean", f.Mean},
		{"std", f.Std},
	} {
		if opt.v != nil {
			m.Add(opt.key, *opt.v)
		}
	}
	if f.Sparse != nil {
		m.Add("sparse", *f.Sparse)
	}
	if f.VarianceNorm != "" {
		m.Add("variance_norm", prototxt.Enum(f.VarianceNorm))
	}
	return m
}
