// Package cpu implements the pure-Go reference backend.
//
// Kernels validate shapes and dtypes and panic on violations; those are
// programmer errors, not runtime conditions. Element-wise ops pick one
// of three paths: in-place when the left operand uniquely owns its
// buffer, a vectorized loop for equal shapes, and a strided loop for
// broadcast shapes.
package cpu

import (
	"fmt"

	"github.com/optic-ml/optic/internal/tensor"
)

// CPUBackend computes on the host processor.
type CPUBackend struct {
	device tensor.Device
}

// New creates a CPU backend. The device name carries the detected
// processor brand.
func New() *CPUBackend {
	return &CPUBackend{device: tensor.Device{Type: tensor.CPU, Name: brandName()}}
}

// Device returns the CPU device descriptor.
func (cpu *CPUBackend) Device() tensor.Device { return cpu.device }

// Name returns the backend identifier.
func (cpu *CPUBackend) Name() string { return "cpu" }

// Add returns a + b with broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("Add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub returns a - b with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("Sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul returns the element-wise product with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("Mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div returns the element-wise quotient with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("Div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

func (cpu *CPUBackend) binaryOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	if a.Shape().Equal(b.Shape()) {
		return cpu.sameShapeOp(name, a, b, f32, f64)
	}
	return cpu.broadcastOp(name, a, b, f32, f64)
}

func (cpu *CPUBackend) sameShapeOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	// In-place when a uniquely owns its buffer: saves an allocation in
	// the training hot loop. Tape-recorded tensors are pinned non-unique.
	out := a
	if !a.IsUnique() {
		var err error
		out, err = tensor.NewRaw(a.Shape(), a.DType(), cpu.device)
		if err != nil {
			panic(fmt.Sprintf("%s: %v", name, err))
		}
	}

	switch a.DType() {
	case tensor.Float32:
		av, bv, ov := a.AsFloat32(), b.AsFloat32(), out.AsFloat32()
		for i := range ov {
			ov[i] = f32(av[i], bv[i])
		}
	case tensor.Float64:
		av, bv, ov := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
		for i := range ov {
			ov[i] = f64(av[i], bv[i])
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
	return out
}

func (cpu *CPUBackend) broadcastOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	out, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	aIdx := newBroadcastIndexer(a.Shape(), outShape)
	bIdx := newBroadcastIndexer(b.Shape(), outShape)
	n := outShape.NumElements()

	switch a.DType() {
	case tensor.Float32:
		av, bv, ov := a.AsFloat32(), b.AsFloat32(), out.AsFloat32()
		for i := 0; i < n; i++ {
			ov[i] = f32(av[aIdx.at(i)], bv[bIdx.at(i)])
		}
	case tensor.Float64:
		av, bv, ov := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
		for i := 0; i < n; i++ {
			ov[i] = f64(av[aIdx.at(i)], bv[bIdx.at(i)])
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
	return out
}

// broadcastIndexer maps a flat index in the broadcast output to the
// flat index in a (possibly smaller) input tensor. Dimensions of size 1
// get stride 0 so every output coordinate reads the same input element.
type broadcastIndexer struct {
	outStrides []int
	inStrides  []int
}

func newBroadcastIndexer(in, out tensor.Shape) *broadcastIndexer {
	outStrides := out.ComputeStrides()
	inStrides := make([]int, len(out))
	realStrides := in.ComputeStrides()
	offset := len(out) - len(in)
	for i := range out {
		if i < offset {
			continue
		}
		if in[i-offset] != 1 {
			inStrides[i] = realStrides[i-offset]
		}
	}
	return &broadcastIndexer{outStrides: outStrides, inStrides: inStrides}
}

func (ix *broadcastIndexer) at(flat int) int {
	in := 0
	for d, stride := range ix.outStrides {
		coord := flat / stride
		flat %= stride
		in += coord * ix.inStrides[d]
	}
	return in
}

// AddScalar returns t + scalar.
func (cpu *CPUBackend) AddScalar(t *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.scalarOp("AddScalar", t,
		func(x float32) float32 { return x + float32(scalar) },
		func(x float64) float64 { return x + scalar })
}

// MulScalar returns t * scalar.
func (cpu *CPUBackend) MulScalar(t *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.scalarOp("MulScalar", t,
		func(x float32) float32 { return x * float32(scalar) },
		func(x float64) float64 { return x * scalar })
}

func (cpu *CPUBackend) scalarOp(
	name string,
	t *tensor.RawTensor,
	f32 func(x float32) float32,
	f64 func(x float64) float64,
) *tensor.RawTensor {
	out, err := tensor.NewRaw(t.Shape(), t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	switch t.DType() {
	case tensor.Float32:
		tv, ov := t.AsFloat32(), out.AsFloat32()
		for i := range ov {
			ov[i] = f32(tv[i])
		}
	case tensor.Float64:
		tv, ov := t.AsFloat64(), out.AsFloat64()
		for i := range ov {
			ov[i] = f64(tv[i])
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, t.DType()))
	}
	return out
}

// Reshape returns a view of t under a new shape with equal element count.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out, err := t.WithShape(shape)
	if err != nil {
		panic(fmt.Sprintf("Reshape: %v", err))
	}
	return out
}

// Transpose swaps the two dimensions of a matrix.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Transpose: want 2D tensor, got shape %v", shape))
	}
	rows, cols := shape[0], shape[1]

	out, err := tensor.NewRaw(tensor.Shape{cols, rows}, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("Transpose: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		tv, ov := t.AsFloat32(), out.AsFloat32()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				ov[c*rows+r] = tv[r*cols+c]
			}
		}
	case tensor.Float64:
		tv, ov := t.AsFloat64(), out.AsFloat64()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				ov[c*rows+r] = tv[r*cols+c]
			}
		}
	default:
		panic(fmt.Sprintf("Transpose: unsupported dtype %s", t.DType()))
	}
	return out
}

// ReLU returns max(x, 0) element-wise.
func (cpu *CPUBackend) ReLU(t *tensor.RawTensor) *tensor.RawTensor {
	return cpu.scalarOp("ReLU", t,
		func(x float32) float32 {
			if x > 0 {
				return x
			}
			return 0
		},
		func(x float64) float64 {
			if x > 0 {
				return x
			}
			return 0
		})
}

// Sum reduces all elements to a scalar tensor.
func (cpu *CPUBackend) Sum(t *tensor.RawTensor) *tensor.RawTensor {
	out, err := tensor.NewRaw(tensor.Shape{}, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("Sum: %v", err))
	}
	switch t.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range t.AsFloat32() {
			sum += v
		}
		out.AsFloat32()[0] = sum
	case tensor.Float64:
		var sum float64
		for _, v := range t.AsFloat64() {
			sum += v
		}
		out.AsFloat64()[0] = sum
	default:
		panic(fmt.Sprintf("Sum: unsupported dtype %s", t.DType()))
	}
	return out
}

// Mean reduces all elements to their scalar mean.
func (cpu *CPUBackend) Mean(t *tensor.RawTensor) *tensor.RawTensor {
	n := t.NumElements()
	return cpu.MulScalar(cpu.Sum(t), 1/float64(n))
}

// Argmax returns int32 indices of the maximum along dim. Ties resolve
// to the lowest index, keeping predictions deterministic.
func (cpu *CPUBackend) Argmax(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 || dim != 1 {
		panic(fmt.Sprintf("Argmax: want 2D tensor with dim=1, got shape %v dim=%d", shape, dim))
	}
	rows, cols := shape[0], shape[1]

	out, err := tensor.NewRaw(tensor.Shape{rows}, tensor.Int32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("Argmax: %v", err))
	}
	ov := out.AsInt32()

	switch t.DType() {
	case tensor.Float32:
		tv := t.AsFloat32()
		for r := 0; r < rows; r++ {
			best, bestIdx := tv[r*cols], 0
			for c := 1; c < cols; c++ {
				if v := tv[r*cols+c]; v > best {
					best, bestIdx = v, c
				}
			}
			ov[r] = int32(bestIdx)
		}
	case tensor.Float64:
		tv := t.AsFloat64()
		for r := 0; r < rows; r++ {
			best, bestIdx := tv[r*cols], 0
			for c := 1; c < cols; c++ {
				if v := tv[r*cols+c]; v > best {
					best, bestIdx = v, c
				}
			}
			ov[r] = int32(bestIdx)
		}
	default:
		panic(fmt.Sprintf("Argmax: unsupported dtype %s", t.DType()))
	}
	return out
}
