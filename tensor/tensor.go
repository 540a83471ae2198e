// Copyright 2026 Optic ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations in the
// Optic toolkit.
//
// The package defines the core types for type-safe tensor work:
//   - Tensor[T, B]: generic tensor bound to an element type and backend
//   - RawTensor: dtype-erased tensor for backend implementations
//   - Backend: interface for device-specific compute
//   - Shape, DataType, Device: core definitions
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
package tensor

import (
	"math/rand"

	"github.com/optic-ml/optic/internal/tensor"
)

// DType is the constraint for tensor element types.
// Supported: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType identifies a tensor's element type at runtime.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Uint8   = tensor.Uint8
	Bool    = tensor.Bool
)

// Shape describes tensor dimensions.
type Shape = tensor.Shape

// Device identifies where tensor data lives.
type Device = tensor.Device

// DeviceType identifies a class of compute device.
type DeviceType = tensor.DeviceType

// CPU is the host processor device type.
const CPU = tensor.CPU

// Backend is the compute interface implemented by devices.
type Backend = tensor.Backend

// RawTensor is the dtype-erased tensor used by backends.
type RawTensor = tensor.RawTensor

// Tensor is a typed tensor bound to a backend.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// BroadcastShapes computes the NumPy-style broadcast result shape.
func BroadcastShapes(a, b Shape) (Shape, error) {
	return tensor.BroadcastShapes(a, b)
}

// NewRaw allocates a zeroed RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// New creates a tensor from a flat row-major slice.
func New[T DType, B Backend](data []T, shape Shape, backend B) (*Tensor[T, B], error) {
	return tensor.New(data, shape, backend)
}

// FromSlice creates a tensor from a slice, panicking on shape errors.
func FromSlice[T DType, B Backend](data []T, shape Shape, backend B) *Tensor[T, B] {
	return tensor.FromSlice(data, shape, backend)
}

// FromRaw wraps a RawTensor in a typed tensor.
func FromRaw[T DType, B Backend](raw *RawTensor, backend B) *Tensor[T, B] {
	return tensor.FromRaw[T](raw, backend)
}

// Zeros creates a zero-filled tensor.
func Zeros[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	return tensor.Zeros[T](shape, backend)
}

// Ones creates a tensor filled with 1.
func Ones[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	return tensor.Ones[T](shape, backend)
}

// Full creates a tensor filled with the given value.
func Full[T DType, B Backend](shape Shape, value float64, backend B) *Tensor[T, B] {
	return tensor.Full[T](shape, value, backend)
}

// Rand creates a tensor of uniform values in [0, 1).
func Rand[T DType, B Backend](shape Shape, rng *rand.Rand, backend B) *Tensor[T, B] {
	return tensor.Rand[T](shape, rng, backend)
}

// RandN creates a tensor of standard normal values.
func RandN[T DType, B Backend](shape Shape, rng *rand.Rand, backend B) *Tensor[T, B] {
	return tensor.RandN[T](shape, rng, backend)
}
