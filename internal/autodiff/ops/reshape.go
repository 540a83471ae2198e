package ops

import "github.com/optic-ml/optic/internal/tensor"

// ReshapeOp records output = reshape(input). The backward pass simply
// views the output gradient under the original shape.
type ReshapeOp struct {
	input     *tensor.RawTensor
	output    *tensor.RawTensor
	origShape tensor.Shape
}

func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{input: input, output: output, origShape: input.Shape()}
}

func (op *ReshapeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *ReshapeOp) Output() *tensor.RawTensor   { return op.output }

func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.origShape)}
}

// TransposeOp records output = inputᵀ for a 2D input.
type TransposeOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

func NewTransposeOp(input, output *tensor.RawTensor) *TransposeOp {
	return &TransposeOp{input: input, output: output}
}

func (op *TransposeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *TransposeOp) Output() *tensor.RawTensor   { return op.output }

func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Transpose(outputGrad)}
}
