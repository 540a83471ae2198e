package ops

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// Conv2DOp records output = conv2d(input, kernel) + bias. The backend
// supplies both backward kernels; the bias gradient is the output
// gradient summed over batch and spatial dimensions.
type Conv2DOp struct {
	input   *tensor.RawTensor
	kernel  *tensor.RawTensor
	bias    *tensor.RawTensor // may be nil
	output  *tensor.RawTensor
	stride  int
	padding int
}

func NewConv2DOp(input, kernel, bias, output *tensor.RawTensor, stride, padding int) *Conv2DOp {
	return &Conv2DOp{input: input, kernel: kernel, bias: bias, output: output, stride: stride, padding: padding}
}

func (op *Conv2DOp) Inputs() []*tensor.RawTensor {
	if op.bias == nil {
		return []*tensor.RawTensor{op.input, op.kernel}
	}
	return []*tensor.RawTensor{op.input, op.kernel, op.bias}
}

func (op *Conv2DOp) Output() *tensor.RawTensor { return op.output }

func (op *Conv2DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradInput := backend.Conv2DInputBackward(op.input, op.kernel, outputGrad, op.stride, op.padding)
	gradKernel := backend.Conv2DKernelBackward(op.input, op.kernel, outputGrad, op.stride, op.padding)
	if op.bias == nil {
		return []*tensor.RawTensor{gradInput, gradKernel}
	}
	return []*tensor.RawTensor{gradInput, gradKernel, op.biasGrad(outputGrad)}
}

func (op *Conv2DOp) biasGrad(outputGrad *tensor.RawTensor) *tensor.RawTensor {
	gs := outputGrad.Shape()
	n, cOut, spatial := gs[0], gs[1], gs[2]*gs[3]

	grad, err := tensor.NewRaw(op.bias.Shape(), tensor.Float32, op.bias.Device())
	if err != nil {
		panic(fmt.Sprintf("Conv2DOp: %v", err))
	}

	og := outputGrad.AsFloat32()
	gv := grad.AsFloat32()
	for s := 0; s < n; s++ {
		for co := 0; co < cOut; co++ {
			base := (s*cOut + co) * spatial
			var sum float32
			for i := 0; i < spatial; i++ {
				sum += og[base+i]
			}
			gv[co] += sum
		}
	}
	return grad
}
