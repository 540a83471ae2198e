package cpu

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// Conv2DInputBackward computes the gradient w.r.t. the convolution
// input: the output gradient is scattered back through every kernel
// tap that read the input position in the forward pass (a transposed
// convolution).
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	in := input.Shape()
	kn := kernel.Shape()
	gs := grad.Shape()

	n, cIn, h, w := in[0], in[1], in[2], in[3]
	cOut, k := kn[0], kn[2]
	hOut, wOut := gs[2], gs[3]

	out, err := tensor.NewRaw(in, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("Conv2DInputBackward: %v", err))
	}

	knData := kernel.AsFloat32()
	gradData := grad.AsFloat32()
	outData := out.AsFloat32()

	for s := 0; s < n; s++ {
		for co := 0; co < cOut; co++ {
			gBase := (s*cOut + co) * hOut * wOut
			for oh := 0; oh < hOut; oh++ {
				for ow := 0; ow < wOut; ow++ {
					g := gradData[gBase+oh*wOut+ow]
					if g == 0 {
						continue
					}
					for ci := 0; ci < cIn; ci++ {
						kBase := ((co*cIn + ci) * k) * k
						iBase := ((s*cIn + ci) * h) * w
						for kh := 0; kh < k; kh++ {
							ih := oh*stride - padding + kh
							if ih < 0 || ih >= h {
								continue
							}
							for kw := 0; kw < k; kw++ {
								iw := ow*stride - padding + kw
								if iw < 0 || iw >= w {
									continue
								}
								outData[iBase+ih*w+iw] += g * knData[kBase+kh*k+kw]
							}
						}
					}
				}
			}
		}
	}
	return out
}

// Conv2DKernelBackward computes the gradient w.r.t. the kernel:
// for each tap, the correlation of the output gradient with the input
// window it covered.
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	in := input.Shape()
	kn := kernel.Shape()
	gs := grad.Shape()

	n, cIn, h, w := in[0], in[1], in[2], in[3]
	cOut, k := kn[0], kn[2]
	hOut, wOut := gs[2], gs[3]

	out, err := tensor.NewRaw(kn, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("Conv2DKernelBackward: %v", err))
	}

	inData := input.AsFloat32()
	gradData := grad.AsFloat32()
	outData := out.AsFloat32()

	for s := 0; s < n; s++ {
		for co := 0; co < cOut; co++ {
			gBase := (s*cOut + co) * hOut * wOut
			for oh := 0; oh < hOut; oh++ {
				for ow := 0; ow < wOut; ow++ {
					g := gradData[gBase+oh*wOut+ow]
					if g == 0 {
						continue
					}
					for ci := 0; ci < cIn; ci++ {
						kBase := ((co*cIn + ci) * k) * k
						iBase := ((s*cIn + ci) * h) * w
						for kh := 0; kh < k; kh++ {
							ih := oh*stride - padding + kh
							if ih < 0 || ih >= h {
								continue
							}
							for kw := 0; kw < k; kw++ {
								iw := ow*stride - padding + kw
								if iw < 0 || iw >= w {
									continue
								}
								outData[kBase+kh*k+kw] += g * inData[iBase+ih*w+iw]
							}
						}
					}
				}
			}
		}
	}
	return out
}
