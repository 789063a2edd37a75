// Package pyrepr renders values as Python literals. The Caffe Python data
// layers read their configuration from a `param_str` holding `repr(dict)`,
// so the generated text must be a literal the layer can evaluate.
package pyrepr

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/zclconf/go-cty/cty"
)

// Float formats v the way Python's repr(float) does: shortest round-trip
// digits, always with a decimal point or exponent.
func Float(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		// Both languages pad the exponent to two digits: 1e-05, 1e+16.
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// String quotes s the way Python's repr(str) does.
func String(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(quote):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case unicode.IsPrint(r):
			sb.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			fmt.Fprintf(&sb, `\U%08x`, r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

// Bool renders True or False.
func Bool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Number renders a cty number: integral values as Python ints, everything
// else as floats. Use Float directly when a float is required.
func Number(n *big.Float) string {
	if n.IsInt() {
		if i, acc := n.Int64(); acc == big.Exact {
			return strconv.FormatInt(i, 10)
		}
		return n.Text('f', 0)
	}
	f, _ := n.Float64()
	return Float(f)
}

// Value renders a cty value. Null is None; lists, tuples and sets become
// Python lists; maps and objects become dicts with sorted keys.
func Value(v cty.Value) (string, error) {
	if v.IsNull() {
		return "None", nil
	}
	if !v.IsKnown() {
		return "", fmt.Errorf("pyrepr: cannot render unknown value of type %s", v.Type().FriendlyName())
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return String(v.AsString()), nil
	case ty == cty.Bool:
		return Bool(v.True()), nil
	case ty == cty.Number:
		return Number(v.AsBigFloat()), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			s, err := Value(el)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case ty.IsMapType() || ty.IsObjectType():
		var d Dict
		for it := v.ElementIterator(); it.Next(); {
			k, el := it.Element()
			d.Entries = append(d.Entries, Entry{Key: k.AsString(), Value: el})
		}
		return d.Repr()
	}
	return "", fmt.Errorf("pyrepr: unsupported type %s", ty.FriendlyName())
}

// Entry is one key of a Dict. Float forces a number to render as a Python
// float even when it is integral.
type Entry struct {
	Key   string
	Value cty.Value
	Float bool
}

// Dict is an insertion-ordered Python dict of cty values.
type Dict struct {
	Entries []Entry
}

// Repr renders the dict as `{'k': v, ...}` in entry order.
func (d Dict) Repr() (string, error) {
	parts := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		var s string
		var err error
		if e.Float && !e.Value.IsNull() && e.Value.Type() == cty.Number {
			f, _ := e.Value.AsBigFloat().Float64()
			s = Float(f)
		} else {
			s, err = Value(e.Value)
		}
		if err != nil {
			return "", fmt.Errorf("key %q: %w", e.Key, err)
		}
		parts[i] = String(e.Key) + ": " + s
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}
