package tensor

import (
	"fmt"
	"math/rand"
)

// New creates a tensor from a flat row-major slice.
func New[T DType, B Backend](data []T, shape Shape, backend B) (*Tensor[T, B], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v", len(data), shape)
	}
	raw, err := NewRaw(shape, inferDataType[T](), backend.Device())
	if err != nil {
		return nil, err
	}
	copy(viewAs[T](raw, raw.DType()), data)
	return &Tensor[T, B]{raw: raw, backend: backend}, nil
}

// FromSlice is New with panicking error handling, for literals in tests
// and model construction.
func FromSlice[T DType, B Backend](data []T, shape Shape, backend B) *Tensor[T, B] {
	t, err := New(data, shape, backend)
	if err != nil {
		panic(err)
	}
	return t
}

// Zeros creates a zero-filled tensor.
func Zeros[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	raw, err := NewRaw(shape, inferDataType[T](), backend.Device())
	if err != nil {
		panic(err)
	}
	return &Tensor[T, B]{raw: raw, backend: backend}
}

// Ones creates a tensor filled with 1.
func Ones[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	return Full[T](shape, 1, backend)
}

// Full creates a tensor filled with the given value.
func Full[T DType, B Backend](shape Shape, value float64, backend B) *Tensor[T, B] {
	t := Zeros[T](shape, backend)
	fillValue(t.raw, value)
	return t
}

// Rand creates a tensor of uniform values in [0, 1).
func Rand[T DType, B Backend](shape Shape, rng *rand.Rand, backend B) *Tensor[T, B] {
	t := Zeros[T](shape, backend)
	fillFunc(t.raw, rng.Float64)
	return t
}

// RandN creates a tensor of standard normal values.
func RandN[T DType, B Backend](shape Shape, rng *rand.Rand, backend B) *Tensor[T, B] {
	t := Zeros[T](shape, backend)
	fillFunc(t.raw, rng.NormFloat64)
	return t
}

func fillValue(raw *RawTensor, value float64) {
	fillFunc(raw, func() float64 { return value })
}

func fillFunc(raw *RawTensor, next func() float64) {
	switch raw.DType() {
	case Float32:
		data := raw.AsFloat32()
		for i := range data {
			data[i] = float32(next())
		}
	case Float64:
		data := raw.AsFloat64()
		for i := range data {
			data[i] = next()
		}
	case Int32:
		data := raw.AsInt32()
		for i := range data {
			data[i] = int32(next())
		}
	case Int64:
		data := raw.AsInt64()
		for i := range data {
			data[i] = int64(next())
		}
	case Uint8:
		data := raw.AsUint8()
		for i := range data {
			data[i] = uint8(next())
		}
	default:
		panic(fmt.Sprintf("fill: unsupported dtype %s", raw.DType()))
	}
}
