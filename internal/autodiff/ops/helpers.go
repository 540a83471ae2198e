package ops

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// reduceBroadcast sums a gradient down to the target shape, undoing
// any broadcasting the forward pass performed. Shapes align from the
// right; leading extra dimensions and size-1 dimensions are summed out.
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()

	// Clone when shapes already match so later in-place ops cannot
	// rewrite a shared gradient.
	if gradShape.Equal(targetShape) {
		return grad.Clone()
	}

	if len(targetShape) == 0 {
		return backend.Sum(grad)
	}

	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = sumAlongDim(result, 0)
		result = squeezeDim(result, 0, backend)
	}

	shape := result.Shape()
	for i := range targetShape {
		if targetShape[i] == 1 && shape[i] > 1 {
			result = sumAlongDim(result, i)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// sumAlongDim sums over one dimension, keeping it with size 1.
func sumAlongDim(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	outShape := shape.Clone()
	outShape[dim] = 1

	out, err := tensor.NewRaw(outShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("sumAlongDim: %v", err))
	}

	strides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()

	switch t.DType() {
	case tensor.Float32:
		in, ov := t.AsFloat32(), out.AsFloat32()
		for i := range in {
			ov[reducedIndex(i, dim, strides, outStrides)] += in[i]
		}
	case tensor.Float64:
		in, ov := t.AsFloat64(), out.AsFloat64()
		for i := range in {
			ov[reducedIndex(i, dim, strides, outStrides)] += in[i]
		}
	default:
		panic(fmt.Sprintf("sumAlongDim: unsupported dtype %s", t.DType()))
	}
	return out
}

// reducedIndex maps a flat index to the flat index of the tensor with
// dimension dim collapsed to size 1.
func reducedIndex(flat, dim int, strides, outStrides []int) int {
	out := 0
	for d, stride := range strides {
		coord := flat / stride
		flat %= stride
		if d != dim {
			out += coord * outStrides[d]
		}
	}
	return out
}

func squeezeDim(t *tensor.RawTensor, dim int, backend tensor.Backend) *tensor.RawTensor {
	shape := t.Shape()
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	return backend.Reshape(t, out)
}

// negate returns -t without touching the tape.
func negate(t *tensor.RawTensor) *tensor.RawTensor {
	out, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("negate: %v", err))
	}
	switch t.DType() {
	case tensor.Float32:
		in, ov := t.AsFloat32(), out.AsFloat32()
		for i := range in {
			ov[i] = -in[i]
		}
	case tensor.Float64:
		in, ov := t.AsFloat64(), out.AsFloat64()
		for i := range in {
			ov[i] = -in[i]
		}
	default:
		panic(fmt.Sprintf("negate: unsupported dtype %s", t.DType()))
	}
	return out
}
