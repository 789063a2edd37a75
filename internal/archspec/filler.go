package archspec

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Filler describes how a weight blob is initialised. Optional numeric fields
// are nil when not set so they are omitted from the generated graph.
type Filler struct {
	Type         string
	Value        *float64
	Min          *float64
	Max          *float64
	Mean         *float64
	Std          *float64
	Sparse       *int64
	VarianceNorm string
}

// Float returns a pointer to v, for building fillers inline.
func Float(v float64) *float64 { return &v }

// ConstantFiller returns a constant filler with the given value.
func ConstantFiller(v float64) Filler {
	return Filler{Type: "constant", Value: Float(v)}
}

// ParseFiller accepts `xavier`, `msra`, `gauss_<std>` or an object
// expression such as `{type = "uniform", min = -0.05, max = 0.05}`.
func ParseFiller(s string) (Filler, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "xavier" || s == "msra":
		return Filler{Type: s}, nil
	case strings.HasPrefix(s, "gauss_"):
		return ParseGaussFiller(s)
	case strings.HasPrefix(s, "{"):
		return parseFillerObject(s)
	}
	return Filler{}, fmt.Errorf("%w: unknown weight filler %q", ErrSyntax, s)
}

// ParseGaussFiller accepts only the `gauss_<std>` form.
func ParseGaussFiller(s string) (Filler, error) {
	std, ok := strings.CutPrefix(s, "gauss_")
	if !ok {
		return Filler{}, fmt.Errorf("%w: filler %q must be gauss_<std>", ErrSyntax, s)
	}
	v, err := strconv.ParseFloat(std, 64)
	if err != nil {
		return Filler{}, fmt.Errorf("%w: filler %q has invalid std %q", ErrSyntax, s, std)
	}
	return Filler{Type: "gaussian", Std: Float(v)}, nil
}

var fillerNumberFields = map[string]func(*Filler, float64){
	"value": func(f *Filler, v float64) { f.Value = Float(v) },
	"min":   func(f *Filler, v float64) { f.Min = Float(v) },
	"max":   func(f *Filler, v float64) { f.Max = Float(v) },
	"mean":  func(f *Filler, v float64) { f.Mean = Float(v) },
	"std":   func(f *Filler, v float64) { f.Std = Float(v) },
}

func parseFillerObject(s string) (Filler, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(s), "filler", hcl.InitialPos)
	if diags.HasErrors() {
		return Filler{}, fmt.Errorf("%w: filler %q: %s", ErrSyntax, s, diags.Error())
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return Filler{}, fmt.Errorf("%w: filler %q: %s", ErrSyntax, s, diags.Error())
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return Filler{}, fmt.Errorf("%w: filler %q must be an object", ErrSyntax, s)
	}

	attrs := val.AsValueMap()
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var f Filler
	for _, k := range keys {
		v := attrs[k]
		if v.IsNull() {
			continue
		}
		switch k {
		case "type", "variance_norm":
			str, err := convert.Convert(v, cty.String)
			if err != nil {
				return Filler{}, fmt.Errorf("%w: filler field %q: %v", ErrSyntax, k, err)
			}
			if k == "type" {
				f.Type = str.AsString()
			} else {
				f.VarianceNorm = strings.ToUpper(str.AsString())
			}
		case "sparse":
			n, err := convert.Convert(v, cty.Number)
			if err != nil {
				return Filler{}, fmt.Errorf("%w: filler field %q: %v", ErrSyntax, k, err)
			}
			i, acc := n.AsBigFloat().Int64()
			if acc != big.Exact {
				return Filler{}, fmt.Errorf("%w: filler field %q must be an integer", ErrSyntax, k)
			}
			f.Sparse = &i
		default:
			set, known := fillerNumberFields[k]
			if !known {
				return Filler{}, fmt.Errorf("%w: filler field %q is not supported", ErrSyntax, k)
			}
			n, err := convert.Convert(v, cty.Number)
			if err != nil {
				return Filler{}, fmt.Errorf("%w: filler field %q: %v", ErrSyntax, k, err)
			}
			fv, _ := n.AsBigFloat().Float64()
			set(&f, fv)
		}
	}
	if f.Type == "" {
		return Filler{}, fmt.Errorf("%w: filler %q has no type", ErrSyntax, s)
	}
	return f, nil
}
