package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optic-ml/optic/internal/tensor"
)

func rawFloat32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.Device{Type: tensor.CPU})
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func TestAddSameShape(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := rawFloat32(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})
	a.ForceNonUnique() // keep a readable after the op

	out := cpu.Add(a, b)
	assert.Equal(t, []float32{11, 22, 33, 44}, out.AsFloat32())
	assert.Equal(t, []float32{1, 2, 3, 4}, a.AsFloat32())
}

func TestAddInPlaceWhenUnique(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{1, 2}, tensor.Shape{2})
	b := rawFloat32(t, []float32{3, 4}, tensor.Shape{2})

	out := cpu.Add(a, b)
	assert.Same(t, a, out)
}

func TestAddBroadcast(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawFloat32(t, []float32{10, 20, 30}, tensor.Shape{3})

	out := cpu.Add(a, b)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32())
}

func TestAddBroadcastBiasNCHW(t *testing.T) {
	cpu := New()
	// Conv bias layout: [1, C, 1, 1] broadcast over [N, C, H, W].
	a := rawFloat32(t, make([]float32, 2*2*2*2), tensor.Shape{2, 2, 2, 2})
	b := rawFloat32(t, []float32{1, 2}, tensor.Shape{1, 2, 1, 1})

	out := cpu.Add(a, b)
	want := []float32{1, 1, 1, 1, 2, 2, 2, 2, 1, 1, 1, 1, 2, 2, 2, 2}
	assert.Equal(t, want, out.AsFloat32())
}

func TestMulAndDiv(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{2, 6}, tensor.Shape{2})
	b := rawFloat32(t, []float32{4, 3}, tensor.Shape{2})
	a.ForceNonUnique()

	assert.Equal(t, []float32{8, 18}, cpu.Mul(a, b).AsFloat32())
	assert.Equal(t, []float32{0.5, 2}, cpu.Div(a, b).AsFloat32())
}

func TestMatMul(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawFloat32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := cpu.MatMul(a, b)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 2}))
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestTranspose(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := cpu.Transpose(a)
	assert.True(t, out.Shape().Equal(tensor.Shape{3, 2}))
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())
}

func TestReLU(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{-1, 0, 2, -3}, tensor.Shape{4})

	assert.Equal(t, []float32{0, 0, 2, 0}, cpu.ReLU(a).AsFloat32())
}

func TestSoftmaxRowsSumToOne(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{1, 2, 3, 1000, 1001, 1002}, tensor.Shape{2, 3})

	out := cpu.Softmax(a).AsFloat32()
	for r := 0; r < 2; r++ {
		var sum float32
		for c := 0; c < 3; c++ {
			sum += out[r*3+c]
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
	// Large logits must not overflow thanks to max shifting.
	assert.False(t, out[3] != out[3], "NaN in softmax output")
	// Identical relative logits give identical distributions.
	assert.InDelta(t, out[0], out[3], 1e-5)
}

func TestCrossEntropyUniformLogits(t *testing.T) {
	cpu := New()
	logits := rawFloat32(t, []float32{0, 0}, tensor.Shape{1, 2})
	targets := rawFloat32(t, []float32{1, 0}, tensor.Shape{1, 2})

	loss := cpu.CrossEntropy(logits, targets)
	assert.InDelta(t, 0.6931, loss.AsFloat32()[0], 1e-4) // ln(2)
}

func TestArgmaxTiesPickLowestIndex(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{1, 3, 3, 0, 5, 5, 5, 5}, tensor.Shape{2, 4})

	out := cpu.Argmax(a, 1)
	assert.Equal(t, []int32{1, 0}, out.AsInt32())
}

func TestSumAndMean(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	a.ForceNonUnique()

	assert.Equal(t, float32(10), cpu.Sum(a).AsFloat32()[0])
	assert.Equal(t, float32(2.5), cpu.Mean(a).AsFloat32()[0])
}

func TestConv2DKnownValues(t *testing.T) {
	cpu := New()
	input := rawFloat32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	kernel := rawFloat32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})
	bias := rawFloat32(t, []float32{1}, tensor.Shape{1})

	out := cpu.Conv2D(input, kernel, bias, 1, 0)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	assert.Equal(t, []float32{13, 17, 25, 29}, out.AsFloat32())
}

func TestConv2DPadding(t *testing.T) {
	cpu := New()
	input := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	kernel := rawFloat32(t, []float32{0, 0, 0, 0, 1, 0, 0, 0, 0}, tensor.Shape{1, 1, 3, 3})

	// Identity kernel with same-padding preserves the input.
	out := cpu.Conv2D(input, kernel, nil, 1, 1)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	assert.Equal(t, []float32{1, 2, 3, 4}, out.AsFloat32())
}

func TestConv2DGradientsMatchManual(t *testing.T) {
	cpu := New()
	input := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	kernel := rawFloat32(t, []float32{2, 3, 4, 5}, tensor.Shape{1, 1, 2, 2})
	grad := rawFloat32(t, []float32{1}, tensor.Shape{1, 1, 1, 1})

	dInput := cpu.Conv2DInputBackward(input, kernel, grad, 1, 0)
	assert.Equal(t, []float32{2, 3, 4, 5}, dInput.AsFloat32())

	dKernel := cpu.Conv2DKernelBackward(input, kernel, grad, 1, 0)
	assert.Equal(t, []float32{1, 2, 3, 4}, dKernel.AsFloat32())
}

func TestMaxPool2DForwardBackward(t *testing.T) {
	cpu := New()
	input := rawFloat32(t, []float32{
		1, 2, 5, 6,
		3, 4, 7, 8,
		13, 14, 9, 10,
		15, 16, 11, 12,
	}, tensor.Shape{1, 1, 4, 4})

	out, maxIndices := cpu.MaxPool2D(input, 2, 2)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	assert.Equal(t, []float32{4, 8, 16, 12}, out.AsFloat32())

	grad := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	dInput := cpu.MaxPool2DBackward(input, grad, maxIndices, 2, 2)

	want := make([]float32, 16)
	want[5] = 1  // position of 4
	want[7] = 2  // position of 8
	want[13] = 3 // position of 16
	want[15] = 4 // position of 12
	assert.Equal(t, want, dInput.AsFloat32())
}

func TestReshape(t *testing.T) {
	cpu := New()
	a := rawFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := cpu.Reshape(a, tensor.Shape{6})
	assert.True(t, out.Shape().Equal(tensor.Shape{6}))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, out.AsFloat32())

	assert.Panics(t, func() { cpu.Reshape(a, tensor.Shape{4}) })
}
