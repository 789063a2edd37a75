package netspec

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/partsegnet/internal/archspec"
	"github.com/specialistvlad/partsegnet/internal/prototxt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallNet is a train/test net with one conv block and a loss head.
func smallNet(t *testing.T) *Net {
	t.Helper()
	n := New("small")
	layers := []*Layer{
		Python("data", "dataset_shapenet", "InputShapenet", "{'subset': 'train'}").
			WithTops("data", "label").WithPhase(PhaseTrain),
		Python("data", "dataset_shapenet", "InputShapenet", "{'subset': 'val'}").
			WithTops("data", "label").WithPhase(PhaseTest),
		Python("data_feat", "custom_layers", "PickAndScale", "0_1_2", "data"),
		Convolution("conv1", "data_feat", 64, archspec.Filler{Type: "xavier"}),
		BatchNorm("bn1", "conv1"),
		ReLU("relu1", "bn1"),
		Convolution("conv2", "bn1", 4, archspec.Filler{Type: "xavier"}),
		SoftmaxWithLoss("loss", "conv2", "label"),
		Accuracy("accuracy", "conv2", "label"),
	}
	for _, l := range layers {
		require.NoError(t, n.Add(l), l.Name)
	}
	return n
}

func layerNames(n *Net) []string {
	out := make([]string, n.Len())
	for i, l := range n.Layers() {
		out[i] = l.Name
	}
	return out
}

func TestNet_Add(t *testing.T) {
	n := smallNet(t)
	assert.Equal(t, 9, n.Len())
	assert.Equal(t,
		[]string{"data", "data", "data_feat", "conv1", "bn1", "relu1", "conv2", "loss", "accuracy"},
		layerNames(n),
	)

	relu, ok := n.Layer("relu1")
	require.True(t, ok)
	assert.True(t, relu.InPlace())
	assert.Equal(t, Top("bn1"), relu.Top(0))

	_, ok = n.Layer("data@TEST")
	assert.True(t, ok)
}

func TestNet_AddErrors(t *testing.T) {
	testCases := []struct {
		name    string
		layer   *Layer
		wantErr error
	}{
		{name: "duplicate name", layer: BatchNorm("conv1", "data_feat"), wantErr: ErrDuplicateLayer},
		{name: "phase-less duplicate of phased layer", layer: Input("data", 1, 3, 1, 100), wantErr: ErrDuplicateLayer},
		{name: "unknown bottom", layer: BatchNorm("bn9", "conv9"), wantErr: ErrUnknownBlob},
		{name: "missing name", layer: &Layer{Type: "ReLU", Tops: []Top{"x"}}, wantErr: ErrInvalidLayer},
		{name: "no tops", layer: &Layer{Name: "x", Type: "Silence", Bottoms: []Top{"data"}}, wantErr: ErrInvalidLayer},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := smallNet(t)
			require.ErrorIs(t, n.Add(tc.layer), tc.wantErr)
			assert.Equal(t, 9, n.Len(), "a rejected layer must not be added")
		})
	}
}

func TestNet_PhaseVisibility(t *testing.T) {
	n := New("")
	require.NoError(t, n.Add(Input("data", 1, 3, 1, 10).WithPhase(PhaseTrain)))
	// A test-phase layer cannot see train-only blobs.
	require.ErrorIs(t, n.Add(BatchNorm("bn", "data").WithPhase(PhaseTest)), ErrUnknownBlob)
	require.NoError(t, n.Add(BatchNorm("bn", "data").WithPhase(PhaseTrain)))
}

func TestNet_Proto(t *testing.T) {
	n := New("tiny")
	require.NoError(t, n.Add(Input("data", 1, 3, 1, 3000)))
	require.NoError(t, n.Add(Permutohedral("conv1", "data", "data", PermutohedralConfig{
		NumOutput:        64,
		NeighborhoodSize: 1,
		Filter:           archspec.Filler{Type: "gaussian", Std: archspec.Float(0.001)},
		LatticeOut:       "lattice0",
	})))
	require.NoError(t, n.Add(EltwiseSum("add1", "conv1", "data")))
	require.NoError(t, n.Add(Softmax("prob", "add1").WithLossWeight(1)))

	want := `name: "tiny"
layer {
  name: "data"
  type: "Input"
  top: "data"
  input_param {
    shape {
      dim: 1
      dim: 3
      dim: 1
      dim: 3000
    }
  }
}
layer {
  name: "conv1"
  type: "Permutohedral"
  bottom: "data"
  bottom: "data"
  bottom: "data"
  top: "conv1"
  top: "lattice0"
  param {
    lr_mult: 1.0
    decay_mult: 1.0
  }
  param {
    lr_mult: 2.0
    decay_mult: 0.0
  }
  permutohedral_param {
    num_output: 64
    group: 1
    neighborhood_size: 1
    bias_term: true
    norm_type: AFTER
    offset_type: NONE
    filter_filler {
      type: "gaussian"
      std: 0.001
    }
    bias_filler {
      type: "constant"
      value: 0.0
    }
  }
}
layer {
  name: "add1"
  type: "Eltwise"
  bottom: "conv1"
  bottom: "data"
  top: "add1"
  eltwise_param {
    operation: SUM
  }
}
layer {
  name: "prob"
  type: "Softmax"
  bottom: "add1"
  top: "prob"
  loss_weight: 1.0
}
`
	assert.Equal(t, want, string(n.Bytes()))

	var buf bytes.Buffer
	written, err := n.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), written)
}

func TestConvolution_Proto(t *testing.T) {
	n := New("")
	require.NoError(t, n.Add(Input("data", 1)))
	require.NoError(t, n.Add(Convolution("conv1", "data", 16, archspec.Filler{Type: "msra", VarianceNorm: "FAN_IN"}).
		WithPhase(PhaseTrain)))

	conv := n.Proto().Messages("layer")[1]
	assert.Equal(t, []string{"data"}, conv.Strings("bottom"))

	params := conv.Messages("param")
	require.Len(t, params, 2)
	lr, _ := params[1].Number("lr_mult")
	assert.InDelta(t, 0.1, lr, 1e-12)
	assert.Empty(t, params[1].Get("decay_mult"))

	body := conv.Sub("convolution_param")
	require.NotNil(t, body)
	var keys []string
	for _, f := range body.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"num_output", "pad", "kernel_size", "stride", "weight_filler", "bias_filler"}, keys)

	// include comes after param and before the type specific block.
	var layerKeys []string
	for _, f := range conv.Fields {
		layerKeys = append(layerKeys, f.Key)
	}
	assert.Equal(t, []string{"name", "type", "bottom", "top", "param", "param", "include", "convolution_param"}, layerKeys)
}

func TestFillerMessage(t *testing.T) {
	sparse := int64(3)
	f := archspec.Filler{
		Type:         "uniform",
		Min:          archspec.Float(-0.05),
		Max:          archspec.Float(0.05),
		Sparse:       &sparse,
		VarianceNorm: "AVERAGE",
	}
	want := "type: \"uniform\"\nmin: -0.05\nmax: 0.05\nsparse: 3\nvariance_norm: AVERAGE\n"
	assert.Equal(t, want, string(prototxt.Marshal(FillerMessage(f))))
}

func TestFromProto_RoundTrip(t *testing.T) {
	n := smallNet(t)
	back, err := Read(bytes.NewReader(n.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, n.Name, back.Name)
	assert.Equal(t, layerNames(n), layerNames(back))
	if diff := cmp.Diff(string(n.Bytes()), string(back.Bytes())); diff != "" {
		t.Errorf("re-encoded net differs (-want +got):\n%s", diff)
	}

	test, ok := back.Layer("data@TEST")
	require.True(t, ok)
	assert.Equal(t, PhaseTest, test.Phase)
	assert.Equal(t, []Top{"data", "label"}, test.Tops)
}

func TestFromProto_Errors(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte(`layer { name: "relu" type: "ReLU" bottom: "x" top: "x" }`)))
	require.ErrorIs(t, err, ErrUnknownBlob)

	_, err = Read(bytes.NewReader([]byte(`layer { name: 3 type: "ReLU" }`)))
	require.ErrorIs(t, err, ErrInvalidLayer)

	_, err = Read(bytes.NewReader([]byte(`layer {`)))
	require.Error(t, err)
}

func TestNet_Topology(t *testing.T) {
	ctx := context.Background()
	n := smallNet(t)

	store, err := n.Topology(ctx)
	require.NoError(t, err)

	deps, err := store.DependenciesOf(ctx, "data_feat")
	require.NoError(t, err)
	assert.Equal(t, []string{"data@TRAIN", "data@TEST"}, deps)

	// conv2 reads bn1 after relu1 rewrote it in place.
	deps, err = store.DependenciesOf(ctx, "conv2")
	require.NoError(t, err)
	assert.Equal(t, []string{"relu1"}, deps)

	order, err := store.TopoOrder(ctx)
	require.NoError(t, err)
	assert.Len(t, order, n.Len())

	require.NoError(t, n.Validate(ctx))
}
