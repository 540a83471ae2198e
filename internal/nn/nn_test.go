package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optic-ml/optic/internal/backend/cpu"
	"github.com/optic-ml/optic/internal/tensor"
)

func TestLinearForward(t *testing.T) {
	backend := cpu.New()
	l := NewLinear(3, 2, rand.New(rand.NewSource(1)), backend)

	// Fix the weights for a known result.
	copy(l.weight.Tensor().Raw().AsFloat32(), []float32{1, 0, 0, 0, 1, 0})
	copy(l.bias.Tensor().Raw().AsFloat32(), []float32{10, 20})

	x := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3}, backend)
	out := l.Forward(x)

	assert.True(t, out.Shape().Equal(tensor.Shape{1, 2}))
	assert.Equal(t, []float32{11, 22}, out.Data())
}

func TestConv2DLayerShape(t *testing.T) {
	backend := cpu.New()
	layer := NewConv2D(Conv2DConfig{
		InChannels:  3,
		OutChannels: 8,
		KernelSize:  3,
		Stride:      1,
		Padding:     1,
	}, rand.New(rand.NewSource(1)), backend)

	x := tensor.Zeros[float32](tensor.Shape{2, 3, 8, 8}, backend)
	out := layer.Forward(x)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 8, 8, 8}))
	assert.Len(t, layer.Parameters(), 2)
}

func TestMaxPool2DLayerShape(t *testing.T) {
	backend := cpu.New()
	layer := NewMaxPool2D(2, 0, backend) // stride defaults to window

	x := tensor.Zeros[float32](tensor.Shape{1, 4, 8, 8}, backend)
	out := layer.Forward(x)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 4, 4, 4}))
	assert.Empty(t, layer.Parameters())
}

func TestFlatten(t *testing.T) {
	backend := cpu.New()
	f := NewFlatten[*cpu.CPUBackend]()

	x := tensor.Zeros[float32](tensor.Shape{2, 3, 4, 5}, backend)
	out := f.Forward(x)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 60}))
}

func TestCrossEntropyLossPerfectPrediction(t *testing.T) {
	backend := cpu.New()
	loss := NewCrossEntropyLoss(backend)

	// Extreme logit on the true class drives the loss toward zero.
	logits := tensor.FromSlice([]float32{50, 0, 0}, tensor.Shape{1, 3}, backend)
	targets := tensor.FromSlice([]float32{1, 0, 0}, tensor.Shape{1, 3}, backend)

	out := loss.Forward(logits, targets)
	assert.InDelta(t, 0, out.Data()[0], 1e-4)
}

func TestAccuracy(t *testing.T) {
	backend := cpu.New()
	outputs := tensor.FromSlice([]float32{
		0.9, 0.1, 0.0,
		0.1, 0.8, 0.1,
		0.3, 0.3, 0.4,
		0.5, 0.2, 0.3,
	}, tensor.Shape{4, 3}, backend)

	acc, err := Accuracy(outputs, []int32{0, 1, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, acc, 1e-9)

	_, err = Accuracy(outputs, []int32{0, 1})
	assert.Error(t, err)
}

func TestSequentialStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(7))
	model := NewSequential[*cpu.CPUBackend](
		NewLinear(4, 3, rng, backend),
		NewReLU[*cpu.CPUBackend](),
		NewLinear(3, 2, rng, backend),
	)

	state := model.StateDict()
	assert.Len(t, state, 4) // two layers with weight+bias

	other := NewSequential[*cpu.CPUBackend](
		NewLinear(4, 3, rand.New(rand.NewSource(99)), backend),
		NewReLU[*cpu.CPUBackend](),
		NewLinear(3, 2, rand.New(rand.NewSource(99)), backend),
	)
	require.NoError(t, other.LoadStateDict(state))

	x := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 4}, backend)
	assert.Equal(t, model.Forward(x).Data(), other.Forward(x).Data())

	delete(state, "0.weight")
	assert.Error(t, other.LoadStateDict(state))
}

func TestBuildClassifierShapes(t *testing.T) {
	backend := cpu.New()
	cfg := ClassifierConfig{
		InChannels:    3,
		Height:        32,
		Width:         32,
		Conv1Channels: 4,
		Conv2Channels: 8,
		KernelSize:    3,
		PoolSize:      2,
		HiddenSize:    16,
		NumClasses:    10,
		Seed:          1,
	}
	model, err := BuildClassifier(cfg, backend)
	require.NoError(t, err)

	x := tensor.Zeros[float32](tensor.Shape{2, 3, 32, 32}, backend)
	out := model.Forward(x)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 10}))
}

func TestBuildClassifierPairedConvGroups(t *testing.T) {
	backend := cpu.New()
	cfg := ClassifierConfig{
		InChannels:    3,
		Height:        8,
		Width:         8,
		Conv1Channels: 4,
		Conv2Channels: 6,
		KernelSize:    3,
		PoolSize:      2,
		HiddenSize:    5,
		NumClasses:    10,
		Seed:          1,
	}
	model, err := BuildClassifier(cfg, backend)
	require.NoError(t, err)

	// conv relu conv relu pool, twice, then flatten dense relu dense.
	assert.Equal(t, 14, model.Len())
	assert.Len(t, model.Parameters(), 12) // 4 convs + 2 linears, weight and bias each

	k := cfg.KernelSize * cfg.KernelSize
	state := model.StateDict()
	assert.Len(t, state["0.weight"], cfg.Conv1Channels*cfg.InChannels*k)
	assert.Len(t, state["2.weight"], cfg.Conv1Channels*cfg.Conv1Channels*k)
	assert.Len(t, state["5.weight"], cfg.Conv2Channels*cfg.Conv1Channels*k)
	assert.Len(t, state["7.weight"], cfg.Conv2Channels*cfg.Conv2Channels*k)
}

func TestSequentialNumParameters(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	model := NewSequential[*cpu.CPUBackend](
		NewLinear(4, 3, rng, backend),
		NewReLU[*cpu.CPUBackend](),
		NewLinear(3, 2, rng, backend),
	)

	// 4*3+3 for the first layer, 3*2+2 for the second.
	assert.Equal(t, 23, model.NumParameters())
	assert.Equal(t, 0, NewSequential[*cpu.CPUBackend]().NumParameters())
}

func TestBuildClassifierSameSeedSameWeights(t *testing.T) {
	backend := cpu.New()
	cfg := DefaultClassifierConfig()
	cfg.Conv1Channels, cfg.Conv2Channels, cfg.HiddenSize = 2, 2, 4

	a, err := BuildClassifier(cfg, backend)
	require.NoError(t, err)
	b, err := BuildClassifier(cfg, backend)
	require.NoError(t, err)

	assert.Equal(t, a.StateDict(), b.StateDict())
}

func TestClassifierConfigValidate(t *testing.T) {
	cfg := DefaultClassifierConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.KernelSize = 4
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.NumClasses = 1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Height = 2
	bad.Width = 2
	bad.PoolSize = 2
	assert.Error(t, bad.Validate()) // pooled to nothing
}
