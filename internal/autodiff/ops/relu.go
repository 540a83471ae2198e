package ops

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// ReLUOp records output = max(input, 0). Gradients pass through where
// the input was positive and are blocked elsewhere.
type ReLUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{input: input, output: output}
}

func (op *ReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *ReLUOp) Output() *tensor.RawTensor   { return op.output }

func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad, err := tensor.NewRaw(op.input.Shape(), op.input.DType(), op.input.Device())
	if err != nil {
		panic(fmt.Sprintf("ReLUOp: %v", err))
	}

	switch op.input.DType() {
	case tensor.Float32:
		in, og, gv := op.input.AsFloat32(), outputGrad.AsFloat32(), grad.AsFloat32()
		for i := range in {
			if in[i] > 0 {
				gv[i] = og[i]
			}
		}
	case tensor.Float64:
		in, og, gv := op.input.AsFloat64(), outputGrad.AsFloat64(), grad.AsFloat64()
		for i := range in {
			if in[i] > 0 {
				gv[i] = og[i]
			}
		}
	default:
		panic(fmt.Sprintf("ReLUOp: unsupported dtype %s", op.input.DType()))
	}
	return []*tensor.RawTensor{grad}
}
