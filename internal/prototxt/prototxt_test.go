package prototxt

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	m := New().
		Add("name", "conv1").
		Add("type", "Convolution").
		Add("bottom", "data").
		Add("top", "conv1").
		AddMessage("param", func(p *Message) {
			p.Add("lr_mult", 1.0).Add("decay_mult", 1.0)
		}).
		AddMessage("convolution_param", func(p *Message) {
			p.Add("num_output", 64).
				Add("kernel_size", 1).
				AddMessage("weight_filler", func(f *Message) {
					f.Add("type", "gaussian").Add("std", 0.001)
				})
		}).
		AddMessage("include", func(p *Message) { p.Add("phase", Enum("TRAIN")) }).
		Add("loss_weight", 1e-05).
		Add("bias_term", false)

	want := `name: "conv1"
type: "Convolution"
bottom: "data"
top: "conv1"
param {
  lr_mult: 1.0
  decay_mult: 1.0
}
convolution_param {
  num_output: 64
  kernel_size: 1
  weight_filler {
    type: "gaussian"
    std: 0.001
  }
}
include {
  phase: TRAIN
}
loss_weight: 1e-05
bias_term: false
`
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))
	assert.Equal(t, want, buf.String())
	assert.Equal(t, want, string(Marshal(m)))
}

func TestQuote(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "plain", want: `"plain"`},
		{in: "{'a': 1}", want: `"{\'a\': 1}"`},
		{in: `say "hi"`, want: `"say \"hi\""`},
		{in: "a\\b", want: `"a\\b"`},
		{in: "x\ny\tz", want: `"x\ny\tz"`},
		{in: "\x01", want: `"\001"`},
		{in: "é", want: `"\303\251"`},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, quote(tc.in))
		})
	}
}

func TestAdd_UnsupportedTypePanics(t *testing.T) {
	assert.Panics(t, func() { New().Add("x", []int{1}) })
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	src := `# generated
name: "net"
layer {
  name: "data"
  type: "Python"
  top: "data"
  top: "label"
  python_param {
    module: "dataset_shapenet"
    param_str: "{\'subset\': \'train\', \'jitter_xyz\': 0.01}"
  }
  include { phase: TRAIN }
}
layer <
  name: "loss"
  loss_weight: 1.0
>
input_dim: -3
`
	m, err := Unmarshal([]byte(src))
	require.NoError(t, err)

	name, ok := m.StringField("name")
	require.True(t, ok)
	assert.Equal(t, "net", name)

	layers := m.Messages("layer")
	require.Len(t, layers, 2)
	assert.Equal(t, []string{"data", "label"}, layers[0].Strings("top"))

	py := layers[0].Sub("python_param")
	require.NotNil(t, py)
	ps, _ := py.StringField("param_str")
	assert.Equal(t, "{'subset': 'train', 'jitter_xyz': 0.01}", ps)

	assert.Equal(t, []any{Enum("TRAIN")}, layers[0].Sub("include").Get("phase"))

	lw, ok := layers[1].Number("loss_weight")
	require.True(t, ok)
	assert.InDelta(t, 1.0, lw, 0)

	dim, ok := m.Int("input_dim")
	require.True(t, ok)
	assert.Equal(t, int64(-3), dim)

	// Encoding the decoded message and decoding again is stable.
	again, err := Unmarshal(Marshal(m))
	require.NoError(t, err)
	if diff := cmp.Diff(m, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshal_Values(t *testing.T) {
	m, err := Unmarshal([]byte(`a: 1 b: 1.5 c: 1e-05 d: true e: SUM f: "x" 'y' g: -inf`))
	require.NoError(t, err)
	want := []Field{
		{Key: "a", Value: int64(1)},
		{Key: "b", Value: Float(1.5)},
		{Key: "c", Value: Float(1e-05)},
		{Key: "d", Value: true},
		{Key: "e", Value: Enum("SUM")},
		{Key: "f", Value: "xy"},
	}
	require.Len(t, m.Fields, 7)
	assert.Equal(t, want, m.Fields[:6])
	g, ok := m.Number("g")
	require.True(t, ok)
	assert.Less(t, g, 0.0)
}

func TestUnmarshal_NonFiniteRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		value float64
		text  string
	}{
		{name: "positive infinity", value: math.Inf(1), text: "std: inf\n"},
		{name: "negative infinity", value: math.Inf(-1), text: "std: -inf\n"},
		{name: "nan", value: math.NaN(), text: "std: nan\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := Marshal(New().Add("std", tc.value))
			require.Equal(t, tc.text, string(data))

			m, err := Unmarshal(data)
			require.NoError(t, err)
			require.Len(t, m.Fields, 1)
			got, ok := m.Fields[0].Value.(Float)
			require.True(t, ok, "decoded %T, want Float", m.Fields[0].Value)
			if math.IsNaN(tc.value) {
				assert.True(t, math.IsNaN(float64(got)))
				return
			}
			assert.Equal(t, tc.value, float64(got))
		})
	}
}

func TestUnmarshal_Numbers(t *testing.T) {
	testCases := []struct {
		src  string
		want any
	}{
		{src: "0x1f", want: int64(31)},
		{src: "-0x1F", want: int64(-31)},
		{src: "1.5f", want: Float(1.5)},
		{src: "2F", want: Float(2)},
		{src: "+Infinity", want: Float(math.Inf(1))},
		{src: "-INF", want: Float(math.Inf(-1))},
		{src: "-7", want: int64(-7)},
		{src: "inference", want: Enum("inference")},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			m, err := Unmarshal([]byte("v: " + tc.src))
			require.NoError(t, err)
			assert.Equal(t, []any{tc.want}, m.Get("v"))
		})
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{name: "missing colon", src: `name "x"`},
		{name: "unclosed block", src: `layer { name: "x"`},
		{name: "stray brace", src: `}`},
		{name: "unterminated string", src: `name: "x`},
		{name: "bad escape", src: `name: "\q"`},
		{name: "missing value", src: `name: }`},
		{name: "bad number", src: `n: 1.2.3`},
		{name: "bad hex", src: `n: 0x1g`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tc.src))
			require.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestDecode_Reader(t *testing.T) {
	m, err := Decode(strings.NewReader("name: \"n\"\nlayer { name: \"a\" }\n"))
	require.NoError(t, err)
	name, ok := m.StringField("name")
	assert.True(t, ok)
	assert.Equal(t, "n", name)
	assert.Len(t, m.Messages("layer"), 1)
}
