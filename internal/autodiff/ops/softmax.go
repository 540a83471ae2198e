package ops

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// SoftmaxOp records a row-wise softmax over [batch, classes].
//
// The Jacobian contracts to one dot product per row:
//
//	grad_in[b,j] = s[b,j] * (grad_out[b,j] - Σ_i grad_out[b,i] * s[b,i])
type SoftmaxOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor // cached probabilities
}

func NewSoftmaxOp(input, output *tensor.RawTensor) *SoftmaxOp {
	return &SoftmaxOp{input: input, output: output}
}

func (op *SoftmaxOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *SoftmaxOp) Output() *tensor.RawTensor   { return op.output }

func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("SoftmaxOp: want 2D input, got shape %v", shape))
	}
	rows, cols := shape[0], shape[1]

	grad, err := tensor.NewRaw(shape, op.input.DType(), op.input.Device())
	if err != nil {
		panic(fmt.Sprintf("SoftmaxOp: %v", err))
	}

	if op.input.DType() != tensor.Float32 {
		panic(fmt.Sprintf("SoftmaxOp: unsupported dtype %s", op.input.DType()))
	}

	s := op.output.AsFloat32()
	og := outputGrad.AsFloat32()
	gv := grad.AsFloat32()

	for r := 0; r < rows; r++ {
		base := r * cols
		var dot float32
		for j := 0; j < cols; j++ {
			dot += og[base+j] * s[base+j]
		}
		for j := 0; j < cols; j++ {
			gv[base+j] = s[base+j] * (og[base+j] - dot)
		}
	}
	return []*tensor.RawTensor{grad}
}
