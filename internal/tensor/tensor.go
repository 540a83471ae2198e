package tensor

import "fmt"

// Tensor is the typed, backend-bound view over a RawTensor. The type
// parameter T fixes the element type at compile time; B carries the
// backend so mixed-device expressions fail to compile.
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// FromRaw wraps an existing RawTensor. The dtype must match T.
func FromRaw[T DType, B Backend](raw *RawTensor, backend B) *Tensor[T, B] {
	if raw.DType() != inferDataType[T]() {
		panic(fmt.Sprintf("FromRaw: raw tensor is %s, want %s", raw.DType(), inferDataType[T]()))
	}
	return &Tensor[T, B]{raw: raw, backend: backend}
}

// Raw returns the underlying RawTensor.
func (t *Tensor[T, B]) Raw() *RawTensor { return t.raw }

// Backend returns the backend this tensor is bound to.
func (t *Tensor[T, B]) Backend() B { return t.backend }

func (t *Tensor[T, B]) Shape() Shape    { return t.raw.Shape() }
func (t *Tensor[T, B]) DType() DataType { return t.raw.DType() }
func (t *Tensor[T, B]) Device() Device  { return t.raw.Device() }

// Data returns a copy of the elements in row-major order.
func (t *Tensor[T, B]) Data() []T {
	view := viewAs[T](t.raw, t.raw.DType())
	out := make([]T, len(view))
	copy(out, view)
	return out
}

func (t *Tensor[T, B]) wrap(raw *RawTensor) *Tensor[T, B] {
	return &Tensor[T, B]{raw: raw, backend: t.backend}
}

// Add returns t + other, with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Add(t.raw, other.raw))
}

// Sub returns t - other, with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Sub(t.raw, other.raw))
}

// Mul returns the element-wise product, with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Mul(t.raw, other.raw))
}

// Div returns the element-wise quotient, with broadcasting.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Div(t.raw, other.raw))
}

// MatMul returns the matrix product over the last two dimensions.
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.MatMul(t.raw, other.raw))
}

// AddScalar returns t + scalar.
func (t *Tensor[T, B]) AddScalar(scalar float64) *Tensor[T, B] {
	return t.wrap(t.backend.AddScalar(t.raw, scalar))
}

// MulScalar returns t * scalar.
func (t *Tensor[T, B]) MulScalar(scalar float64) *Tensor[T, B] {
	return t.wrap(t.backend.MulScalar(t.raw, scalar))
}

// Reshape returns a tensor with the same data under a new shape.
func (t *Tensor[T, B]) Reshape(shape Shape) *Tensor[T, B] {
	return t.wrap(t.backend.Reshape(t.raw, shape))
}

// Transpose swaps the last two dimensions.
func (t *Tensor[T, B]) Transpose() *Tensor[T, B] {
	return t.wrap(t.backend.Transpose(t.raw))
}

// ReLU applies max(x, 0) element-wise.
func (t *Tensor[T, B]) ReLU() *Tensor[T, B] {
	return t.wrap(t.backend.ReLU(t.raw))
}

// Softmax applies softmax along the last dimension.
func (t *Tensor[T, B]) Softmax() *Tensor[T, B] {
	return t.wrap(t.backend.Softmax(t.raw))
}

// Sum reduces all elements to a scalar tensor.
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	return t.wrap(t.backend.Sum(t.raw))
}

// Mean reduces all elements to their scalar mean.
func (t *Tensor[T, B]) Mean() *Tensor[T, B] {
	return t.wrap(t.backend.Mean(t.raw))
}

// Argmax returns the index of the maximum along dim as an int32 tensor.
// Ties resolve to the lowest index.
func (t *Tensor[T, B]) Argmax(dim int) *Tensor[int32, B] {
	return &Tensor[int32, B]{raw: t.backend.Argmax(t.raw, dim), backend: t.backend}
}

func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s](shape=%v, device=%s)", t.raw.DType(), t.Shape(), t.Device())
}
