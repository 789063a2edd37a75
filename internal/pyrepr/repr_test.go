package pyrepr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFloat(t *testing.T) {
	testCases := []struct {
		in       float64
		expected string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{0.1, "0.1"},
		{0.001, "0.001"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{-2.5, "-2.5"},
		{3000, "3000.0"},
		{1e16, "1e+16"},
		{math.Inf(1), "inf"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, Float(tc.in))
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, `'train'`, String("train"))
	assert.Equal(t, `"it's"`, String("it's"))
	assert.Equal(t, `'say "hi" it\'s'`, String(`say "hi" it's`))
	assert.Equal(t, `'a\\b\n'`, String("a\\b\n"))
	assert.Equal(t, `'\x00\x7f'`, String("\x00\x7f"))
	assert.Equal(t, `'a\xa0b'`, String("a\u00a0b"))
	assert.Equal(t, `'a\u200bb'`, String("a\u200bb"))
	assert.Equal(t, `'\U000e0001'`, String("\U000e0001"))
	assert.Equal(t, `'café ü'`, String("café ü"))
}

func TestValue(t *testing.T) {
	testCases := []struct {
		name     string
		in       cty.Value
		expected string
	}{
		{"null", cty.NullVal(cty.String), "None"},
		{"int", cty.NumberIntVal(32), "32"},
		{"non integral", cty.NumberFloatVal(0.25), "0.25"},
		{"bool", cty.True, "True"},
		{"list", cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}), "['a', 'b']"},
		{"object keys sorted", cty.ObjectVal(map[string]cty.Value{
			"b": cty.NumberIntVal(1),
			"a": cty.StringVal("x"),
		}), "{'a': 'x', 'b': 1}"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Value(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := Value(cty.UnknownVal(cty.String))
	require.Error(t, err)
}

func TestDict_Repr(t *testing.T) {
	d := Dict{Entries: []Entry{
		{Key: "subset", Value: cty.StringVal("train")},
		{Key: "jitter_xyz", Value: cty.NumberIntVal(0), Float: true},
		{Key: "sample_size", Value: cty.NumberIntVal(3000)},
		{Key: "output_mask", Value: cty.False},
	}}
	got, err := d.Repr()
	require.NoError(t, err)
	assert.Equal(t, "{'subset': 'train', 'jitter_xyz': 0.0, 'sample_size': 3000, 'output_mask': False}", got)
}
