package cpu

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// MaxPool2D applies max pooling over NCHW input and returns the pooled
// tensor plus the flat input index of each window maximum. The indices
// drive the backward routing pass.
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) (*tensor.RawTensor, []int) {
	in := input.Shape()
	if len(in) != 4 {
		panic(fmt.Sprintf("MaxPool2D: want NCHW input, got shape %v", in))
	}
	if input.DType() != tensor.Float32 {
		panic("MaxPool2D: float32 only")
	}

	n, c, h, w := in[0], in[1], in[2], in[3]
	hOut := (h-kernelSize)/stride + 1
	wOut := (w-kernelSize)/stride + 1
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("MaxPool2D: window %d stride %d does not fit input %dx%d", kernelSize, stride, h, w))
	}

	out, err := tensor.NewRaw(tensor.Shape{n, c, hOut, wOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("MaxPool2D: %v", err))
	}

	inData := input.AsFloat32()
	outData := out.AsFloat32()
	maxIndices := make([]int, n*c*hOut*wOut)

	outIdx := 0
	for s := 0; s < n; s++ {
		for ch := 0; ch < c; ch++ {
			base := ((s*c + ch) * h) * w
			for oh := 0; oh < hOut; oh++ {
				for ow := 0; ow < wOut; ow++ {
					hStart := oh * stride
					wStart := ow * stride
					maxPos := base + hStart*w + wStart
					maxVal := inData[maxPos]
					for kh := 0; kh < kernelSize; kh++ {
						rowBase := base + (hStart+kh)*w + wStart
						for kw := 0; kw < kernelSize; kw++ {
							if v := inData[rowBase+kw]; v > maxVal {
								maxVal = v
								maxPos = rowBase + kw
							}
						}
					}
					outData[outIdx] = maxVal
					maxIndices[outIdx] = maxPos
					outIdx++
				}
			}
		}
	}
	return out, maxIndices
}

// MaxPool2DBackward routes each output gradient to the input position
// that held the window maximum; every other position gets zero.
func (cpu *CPUBackend) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int, kernelSize, stride int) *tensor.RawTensor {
	if len(maxIndices) != grad.NumElements() {
		panic(fmt.Sprintf("MaxPool2DBackward: %d indices for %d gradient elements", len(maxIndices), grad.NumElements()))
	}

	out, err := tensor.NewRaw(input.Shape(), tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("MaxPool2DBackward: %v", err))
	}

	gradData := grad.AsFloat32()
	outData := out.AsFloat32()
	for i, pos := range maxIndices {
		outData[pos] += gradData[i]
	}
	return out
}
