package cpu

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// MatMul computes the matrix product of two 2D tensors [m,k] x [k,n].
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("MatMul: want 2D tensors, got %v x %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("MatMul: inner dimensions differ, %v x %v", aShape, bShape))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("MatMul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	out, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("MatMul: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		matmulFloat32(a.AsFloat32(), b.AsFloat32(), out.AsFloat32(), m, k, n)
	case tensor.Float64:
		matmulFloat64(a.AsFloat64(), b.AsFloat64(), out.AsFloat64(), m, k, n)
	default:
		panic(fmt.Sprintf("MatMul: unsupported dtype %s", a.DType()))
	}
	return out
}

// matmulFloat32 uses the ikj loop order so the inner loop walks both
// b and out contiguously.
func matmulFloat32(a, b, out []float32, m, k, n int) {
	for i := 0; i < m; i++ {
		outRow := out[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := a[i*k+p]
			if av == 0 {
				continue
			}
			bRow := b[p*n : (p+1)*n]
			for j := range outRow {
				outRow[j] += av * bRow[j]
			}
		}
	}
}

func matmulFloat64(a, b, out []float64, m, k, n int) {
	for i := 0; i < m; i++ {
		outRow := out[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := a[i*k+p]
			if av == 0 {
				continue
			}
			bRow := b[p*n : (p+1)*n]
			for j := range outRow {
				outRow[j] += av * bRow[j]
			}
		}
	}
}
