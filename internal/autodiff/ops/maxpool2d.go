package ops

import "github.com/optic-ml/optic/internal/tensor"

// MaxPool2DOp records output = maxpool(input). The forward pass saves
// the flat index of each window maximum; backward routes gradients to
// exactly those positions.
type MaxPool2DOp struct {
	input      *tensor.RawTensor
	output     *tensor.RawTensor
	maxIndices []int
	kernelSize int
	stride     int
}

func NewMaxPool2DOp(input, output *tensor.RawTensor, maxIndices []int, kernelSize, stride int) *MaxPool2DOp {
	return &MaxPool2DOp{input: input, output: output, maxIndices: maxIndices, kernelSize: kernelSize, stride: stride}
}

func (op *MaxPool2DOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *MaxPool2DOp) Output() *tensor.RawTensor   { return op.output }

func (op *MaxPool2DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		backend.MaxPool2DBackward(op.input, outputGrad, op.maxIndices, op.kernelSize, op.stride),
	}
}
