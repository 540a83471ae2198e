package cpu

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// Conv2D computes a 2D convolution over NCHW input with a square
// kernel [Cout, Cin, K, K] and optional bias [Cout].
//
// Implementation: im2col. Each input window is unrolled into a column,
// turning the convolution into one MatMul per sample. Memory for the
// column matrix is traded for the dense kernel's cache behavior.
func (cpu *CPUBackend) Conv2D(input, kernel, bias *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	in := input.Shape()
	kn := kernel.Shape()
	if len(in) != 4 || len(kn) != 4 {
		panic(fmt.Sprintf("Conv2D: want NCHW input and OIHW kernel, got %v and %v", in, kn))
	}
	if in[1] != kn[1] {
		panic(fmt.Sprintf("Conv2D: input channels %d != kernel channels %d", in[1], kn[1]))
	}
	if kn[2] != kn[3] {
		panic(fmt.Sprintf("Conv2D: non-square kernel %dx%d", kn[2], kn[3]))
	}
	if input.DType() != tensor.Float32 || kernel.DType() != tensor.Float32 {
		panic("Conv2D: float32 only")
	}

	n, cIn, h, w := in[0], in[1], in[2], in[3]
	cOut, k := kn[0], kn[2]
	hOut := (h+2*padding-k)/stride + 1
	wOut := (w+2*padding-k)/stride + 1
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("Conv2D: kernel %d stride %d padding %d does not fit input %dx%d", k, stride, padding, h, w))
	}

	out, err := tensor.NewRaw(tensor.Shape{n, cOut, hOut, wOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("Conv2D: %v", err))
	}

	inData := input.AsFloat32()
	knData := kernel.AsFloat32()
	outData := out.AsFloat32()

	colRows := cIn * k * k
	colCols := hOut * wOut
	columns := make([]float32, colRows*colCols)

	for s := 0; s < n; s++ {
		sample := inData[s*cIn*h*w : (s+1)*cIn*h*w]
		im2col(sample, columns, cIn, h, w, k, stride, padding, hOut, wOut)

		// [cOut, colRows] x [colRows, colCols] -> [cOut, colCols]
		dst := outData[s*cOut*colCols : (s+1)*cOut*colCols]
		matmulFloat32(knData, columns, dst, cOut, colRows, colCols)
	}

	if bias != nil {
		bv := bias.AsFloat32()
		for s := 0; s < n; s++ {
			for co := 0; co < cOut; co++ {
				base := (s*cOut + co) * colCols
				b := bv[co]
				for i := 0; i < colCols; i++ {
					outData[base+i] += b
				}
			}
		}
	}
	return out
}

// im2col unrolls every kxk window of a single CHW sample into a column
// of the [cIn*k*k, hOut*wOut] matrix. Out-of-bounds positions (from
// padding) contribute zero.
func im2col(sample, columns []float32, cIn, h, w, k, stride, padding, hOut, wOut int) {
	colCols := hOut * wOut
	for ci := 0; ci < cIn; ci++ {
		for kh := 0; kh < k; kh++ {
			for kw := 0; kw < k; kw++ {
				row := (ci*k+kh)*k + kw
				dst := columns[row*colCols : (row+1)*colCols]
				i := 0
				for oh := 0; oh < hOut; oh++ {
					ih := oh*stride - padding + kh
					for ow := 0; ow < wOut; ow++ {
						iw := ow*stride - padding + kw
						if ih >= 0 && ih < h && iw >= 0 && iw < w {
							dst[i] = sample[(ci*h+ih)*w+iw]
						} else {
							dst[i] = 0
						}
						i++
					}
				}
			}
		}
	}
}
