// Package autodiff provides tape-based reverse-mode differentiation as
// a backend decorator: wrap any Backend and every supported operation
// is recorded while the tape is on, then replayed in reverse to
// produce gradients.
package autodiff

import (
	"fmt"

	"github.com/optic-ml/optic/internal/autodiff/ops"
	"github.com/optic-ml/optic/internal/tensor"
)

// AutodiffBackend decorates an inner backend with gradient recording.
// It satisfies tensor.Backend, so models built against the interface
// train unchanged.
type AutodiffBackend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New wraps a backend with a fresh gradient tape.
func New[B tensor.Backend](inner B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{inner: inner, tape: NewGradientTape()}
}

// Inner returns the wrapped backend.
func (b *AutodiffBackend[B]) Inner() B { return b.inner }

// Tape returns the gradient tape.
func (b *AutodiffBackend[B]) Tape() *GradientTape { return b.tape }

func (b *AutodiffBackend[B]) Device() tensor.Device { return b.inner.Device() }

func (b *AutodiffBackend[B]) Name() string { return "autodiff(" + b.inner.Name() + ")" }

// Backward computes gradients of a scalar-like output w.r.t. every
// tensor on the tape. The output gradient is seeded with ones.
func (b *AutodiffBackend[B]) Backward(output *tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	seed, err := tensor.NewRaw(output.Shape(), output.DType(), output.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: %v", err))
	}
	switch output.DType() {
	case tensor.Float32:
		data := seed.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := seed.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	default:
		panic(fmt.Sprintf("backward: unsupported dtype %s", output.DType()))
	}

	// Walk with the inner backend so the backward pass itself is not
	// recorded.
	return b.tape.Backward(output, seed, b.inner)
}

func (b *AutodiffBackend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Add(x, y)
	b.tape.Record(ops.NewAddOp(x, y, out))
	return out
}

func (b *AutodiffBackend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sub(x, y)
	b.tape.Record(ops.NewSubOp(x, y, out))
	return out
}

func (b *AutodiffBackend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Mul(x, y)
	b.tape.Record(ops.NewMulOp(x, y, out))
	return out
}

func (b *AutodiffBackend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Div(x, y)
	b.tape.Record(ops.NewDivOp(x, y, out))
	return out
}

// Scalar ops are not recorded; the training path uses them only
// outside the taped forward pass (optimizer updates, metrics).
func (b *AutodiffBackend[B]) AddScalar(t *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return b.inner.AddScalar(t, scalar)
}

func (b *AutodiffBackend[B]) MulScalar(t *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return b.inner.MulScalar(t, scalar)
}

func (b *AutodiffBackend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.MatMul(x, y)
	b.tape.Record(ops.NewMatMulOp(x, y, out))
	return out
}

func (b *AutodiffBackend[B]) Reshape(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out := b.inner.Reshape(t, shape)
	b.tape.Record(ops.NewReshapeOp(t, out))
	return out
}

func (b *AutodiffBackend[B]) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Transpose(t)
	b.tape.Record(ops.NewTransposeOp(t, out))
	return out
}

func (b *AutodiffBackend[B]) ReLU(t *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.ReLU(t)
	b.tape.Record(ops.NewReLUOp(t, out))
	return out
}

func (b *AutodiffBackend[B]) Softmax(t *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Softmax(t)
	b.tape.Record(ops.NewSoftmaxOp(t, out))
	return out
}

func (b *AutodiffBackend[B]) Sum(t *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Sum(t)
}

func (b *AutodiffBackend[B]) Mean(t *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Mean(t)
}

func (b *AutodiffBackend[B]) Argmax(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Argmax(t, dim)
}

func (b *AutodiffBackend[B]) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.CrossEntropy(logits, targets)
	b.tape.Record(ops.NewCrossEntropyOp(logits, targets, out))
	return out
}

func (b *AutodiffBackend[B]) Conv2D(input, kernel, bias *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	out := b.inner.Conv2D(input, kernel, bias, stride, padding)
	b.tape.Record(ops.NewConv2DOp(input, kernel, bias, out, stride, padding))
	return out
}

func (b *AutodiffBackend[B]) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DInputBackward(input, kernel, grad, stride, padding)
}

func (b *AutodiffBackend[B]) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DKernelBackward(input, kernel, grad, stride, padding)
}

func (b *AutodiffBackend[B]) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) (*tensor.RawTensor, []int) {
	out, maxIndices := b.inner.MaxPool2D(input, kernelSize, stride)
	b.tape.Record(ops.NewMaxPool2DOp(input, out, maxIndices, kernelSize, stride))
	return out, maxIndices
}

func (b *AutodiffBackend[B]) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int, kernelSize, stride int) *tensor.RawTensor {
	return b.inner.MaxPool2DBackward(input, grad, maxIndices, kernelSize, stride)
}
