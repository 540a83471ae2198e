package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optic-ml/optic/internal/backend/cpu"
	"github.com/optic-ml/optic/internal/nn"
	"github.com/optic-ml/optic/internal/tensor"
)

func param(t *testing.T, backend *cpu.CPUBackend, values []float32) *nn.Parameter[*cpu.CPUBackend] {
	t.Helper()
	tt := tensor.FromSlice(values, tensor.Shape{len(values)}, backend)
	return nn.NewParameter("weight", tt)
}

func gradFor(t *testing.T, p *nn.Parameter[*cpu.CPUBackend], values []float32) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(tensor.Shape{len(values)}, tensor.Float32, tensor.Device{Type: tensor.CPU})
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return map[*tensor.RawTensor]*tensor.RawTensor{p.Tensor().Raw(): raw}
}

func TestSGDStep(t *testing.T) {
	backend := cpu.New()
	p := param(t, backend, []float32{1, 2})
	opt := NewSGD([]*nn.Parameter[*cpu.CPUBackend]{p}, SGDConfig{LR: 0.1})

	opt.Step(gradFor(t, p, []float32{1, -1}))
	assert.InDeltaSlice(t, []float32{0.9, 2.1}, p.Tensor().Data(), 1e-6)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	backend := cpu.New()
	p := param(t, backend, []float32{0})
	opt := NewSGD([]*nn.Parameter[*cpu.CPUBackend]{p}, SGDConfig{LR: 1, Momentum: 0.5})

	opt.Step(gradFor(t, p, []float32{1})) // vel=1, p=-1
	opt.Step(gradFor(t, p, []float32{1})) // vel=1.5, p=-2.5
	assert.InDeltaSlice(t, []float32{-2.5}, p.Tensor().Data(), 1e-6)
}

func TestAdamFirstStepMovesByLR(t *testing.T) {
	backend := cpu.New()
	p := param(t, backend, []float32{1})
	opt := NewAdam([]*nn.Parameter[*cpu.CPUBackend]{p}, AdamConfig{LR: 0.1})

	// After bias correction the first step is lr * g/|g| up to eps.
	opt.Step(gradFor(t, p, []float32{0.5}))
	assert.InDelta(t, 0.9, p.Tensor().Data()[0], 1e-4)
	assert.Equal(t, 1, opt.NumSteps())
}

func TestAdamDefaults(t *testing.T) {
	backend := cpu.New()
	p := param(t, backend, []float32{0})
	opt := NewAdam([]*nn.Parameter[*cpu.CPUBackend]{p}, AdamConfig{})

	assert.InDelta(t, 0.001, opt.LR(), 1e-12)
}

func TestStepSkipsParamsWithoutGradient(t *testing.T) {
	backend := cpu.New()
	p := param(t, backend, []float32{3})
	opt := NewAdam([]*nn.Parameter[*cpu.CPUBackend]{p}, AdamConfig{})

	opt.Step(map[*tensor.RawTensor]*tensor.RawTensor{})
	assert.Equal(t, []float32{3}, p.Tensor().Data())
	assert.Nil(t, p.Grad())
}

func TestZeroGradClearsCachedGradients(t *testing.T) {
	backend := cpu.New()
	p := param(t, backend, []float32{1})
	opt := NewSGD([]*nn.Parameter[*cpu.CPUBackend]{p}, SGDConfig{LR: 0.1})

	opt.Step(gradFor(t, p, []float32{1}))
	require.NotNil(t, p.Grad())

	opt.ZeroGrad()
	assert.Nil(t, p.Grad())
}
