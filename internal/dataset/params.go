package dataset

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"sort"

	"github.com/specialistvlad/partsegnet/internal/pyrepr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Params is an insertion-ordered parameter dict handed to a Python data
// layer. Setting an existing key keeps its position, like a Python dict.
type Params struct {
	entries []pyrepr.Entry
}

// NewParams returns an empty parameter dict.
func NewParams() *Params {
	return &Params{}
}

func (p *Params) index(key string) int {
	return slices.IndexFunc(p.entries, func(e pyrepr.Entry) bool { return e.Key == key })
}

// Set stores v under key.
func (p *Params) Set(key string, v cty.Value) {
	p.set(pyrepr.Entry{Key: key, Value: v})
}

// SetFloat stores v under key so it renders as a Python float.
func (p *Params) SetFloat(key string, v float64) {
	p.set(pyrepr.Entry{Key: key, Value: cty.NumberFloatVal(v), Float: true})
}

// SetInt stores v under key as a Python int.
func (p *Params) SetInt(key string, v int) {
	p.set(pyrepr.Entry{Key: key, Value: cty.NumberIntVal(int64(v))})
}

func (p *Params) set(e pyrepr.Entry) {
	if i := p.index(e.Key); i >= 0 {
		p.entries[i] = e
		return
	}
	p.entries = append(p.entries, e)
}

// Get returns the value under key.
func (p *Params) Get(key string) (cty.Value, bool) {
	if i := p.index(key); i >= 0 {
		return p.entries[i].Value, true
	}
	return cty.NilVal, false
}

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	return p.index(key) >= 0
}

// Delete removes key if present.
func (p *Params) Delete(key string) {
	if i := p.index(key); i >= 0 {
		p.entries = slices.Delete(p.entries, i, i+1)
	}
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	keys := make([]string, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.Key
	}
	return keys
}

// Len returns the number of keys.
func (p *Params) Len() int {
	return len(p.entries)
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	return &Params{entries: slices.Clone(p.entries)}
}

// Repr renders the dict as a Python literal.
func (p *Params) Repr() (string, error) {
	return pyrepr.Dict{Entries: p.entries}.Repr()
}

// castFloat rewrites key as a float when present.
func (p *Params) castFloat(key string) error {
	v, ok := p.Get(key)
	if !ok {
		return nil
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil || n.IsNull() {
		return fmt.Errorf("dataset param %q: cannot convert %s to a float", key, describe(v))
	}
	f, _ := n.AsBigFloat().Float64()
	p.SetFloat(key, f)
	return nil
}

// castInt rewrites key as an int, truncating toward zero, when present.
func (p *Params) castInt(key string) error {
	v, ok := p.Get(key)
	if !ok {
		return nil
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil || n.IsNull() {
		return fmt.Errorf("dataset param %q: cannot convert %s to an int", key, describe(v))
	}
	i, acc := n.AsBigFloat().Int64()
	if acc != big.Exact && (i == math.MaxInt64 || i == math.MinInt64) {
		return fmt.Errorf("dataset param %q: %s overflows an int", key, describe(v))
	}
	p.SetInt(key, int(i))
	return nil
}

// castBool rewrites key as a bool when present.
func (p *Params) castBool(key string) error {
	v, ok := p.Get(key)
	if !ok {
		return nil
	}
	b, err := convert.Convert(v, cty.Bool)
	if err != nil || b.IsNull() {
		return fmt.Errorf("dataset param %q: cannot convert %s to a bool", key, describe(v))
	}
	p.Set(key, b)
	return nil
}

func describe(v cty.Value) string {
	if s, err := pyrepr.Value(v); err == nil {
		return s
	}
	return v.Type().FriendlyName()
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
