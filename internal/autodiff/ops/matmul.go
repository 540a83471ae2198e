package ops

import "github.com/optic-ml/optic/internal/tensor"

// MatMulOp records output = a @ b for 2D operands.
//
//	grad_a = grad @ bᵀ
//	grad_b = aᵀ @ grad
type MatMulOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{inputs: []*tensor.RawTensor{a, b}, output: output}
}

func (op *MatMulOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *MatMulOp) Output() *tensor.RawTensor   { return op.output }

func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := backend.MatMul(outputGrad, backend.Transpose(b))
	gradB := backend.MatMul(backend.Transpose(a), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}
