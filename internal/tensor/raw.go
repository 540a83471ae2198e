package tensor

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// DeviceType identifies a class of compute device.
type DeviceType int

const (
	// CPU is the host processor device.
	CPU DeviceType = iota
)

// Device identifies where a tensor's data lives.
type Device struct {
	Type DeviceType
	Name string
}

func (d Device) String() string {
	if d.Name != "" {
		return fmt.Sprintf("cpu(%s)", d.Name)
	}
	return "cpu"
}

// tensorBuffer is a reference-counted byte buffer shared between
// RawTensors. Sharing enables cheap clones; the reference count tells
// writers when a copy is required.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int64
	// nonUnique forces copy-on-write even at refCount 1. Set while the
	// gradient tape holds the tensor so inplace ops cannot rewrite
	// values needed by the backward pass.
	nonUnique atomic.Bool
}

func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{data: make([]byte, size)}
	buf.refCount.Store(1)
	return buf
}

func (b *tensorBuffer) addRef() { b.refCount.Add(1) }

func (b *tensorBuffer) release() {
	if b.refCount.Add(-1) < 0 {
		panic("tensorBuffer: release without matching addRef")
	}
}

// RawTensor is a dtype-erased dense tensor: a shape, a data type, a
// device, and a flat row-major buffer. Typed access goes through the
// As* views; higher layers wrap it in Tensor[T, B].
type RawTensor struct {
	shape  Shape
	dtype  DataType
	device Device
	buffer *tensorBuffer
}

// NewRaw allocates a zeroed RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	size := shape.NumElements() * dtype.Size()
	return &RawTensor{
		shape:  shape.Clone(),
		dtype:  dtype,
		device: device,
		buffer: newTensorBuffer(size),
	}, nil
}

// NewRawFromBytes allocates a RawTensor initialized from raw bytes.
// The byte slice is copied.
func NewRawFromBytes(shape Shape, dtype DataType, device Device, data []byte) (*RawTensor, error) {
	t, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	want := shape.NumElements() * dtype.Size()
	if len(data) != want {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d bytes)", len(data), shape, want)
	}
	copy(t.buffer.data, data)
	return t, nil
}

func (t *RawTensor) Shape() Shape     { return t.shape }
func (t *RawTensor) DType() DataType  { return t.dtype }
func (t *RawTensor) Device() Device   { return t.device }
func (t *RawTensor) NumElements() int { return t.shape.NumElements() }

// Bytes returns the underlying byte buffer. The slice aliases tensor
// storage; callers must not hold it across a CloneForWrite.
func (t *RawTensor) Bytes() []byte { return t.buffer.data }

// IsUnique reports whether this tensor is the sole owner of its buffer
// and the buffer has not been pinned by the tape. Only unique buffers
// may be written in place.
func (t *RawTensor) IsUnique() bool {
	return t.buffer.refCount.Load() == 1 && !t.buffer.nonUnique.Load()
}

// ForceNonUnique pins the buffer so all future writes copy first.
// The gradient tape calls this on every recorded input and output.
func (t *RawTensor) ForceNonUnique() { t.buffer.nonUnique.Store(true) }

// Clone returns a new RawTensor sharing the same buffer.
func (t *RawTensor) Clone() *RawTensor {
	t.buffer.addRef()
	return &RawTensor{
		shape:  t.shape.Clone(),
		dtype:  t.dtype,
		device: t.device,
		buffer: t.buffer,
	}
}

// CloneForWrite returns a tensor safe to write: itself when unique,
// otherwise a deep copy of the buffer.
func (t *RawTensor) CloneForWrite() *RawTensor {
	if t.IsUnique() {
		return t
	}
	out, err := NewRawFromBytes(t.shape, t.dtype, t.device, t.buffer.data)
	if err != nil {
		panic(fmt.Sprintf("CloneForWrite: %v", err))
	}
	return out
}

// Release drops this tensor's reference to its buffer.
func (t *RawTensor) Release() { t.buffer.release() }

// WithShape returns a view of the same buffer under a new shape.
// Element counts must match.
func (t *RawTensor) WithShape(shape Shape) (*RawTensor, error) {
	if shape.NumElements() != t.shape.NumElements() {
		return nil, fmt.Errorf("cannot view shape %v as %v: element count differs", t.shape, shape)
	}
	t.buffer.addRef()
	return &RawTensor{
		shape:  shape.Clone(),
		dtype:  t.dtype,
		device: t.device,
		buffer: t.buffer,
	}, nil
}

func viewAs[T any](t *RawTensor, dt DataType) []T {
	if t.dtype != dt {
		panic(fmt.Sprintf("tensor is %s, requested %s view", t.dtype, dt))
	}
	n := t.shape.NumElements()
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&t.buffer.data[0])), n)
}

// AsFloat32 returns the buffer as a []float32. Panics on dtype mismatch.
func (t *RawTensor) AsFloat32() []float32 { return viewAs[float32](t, Float32) }

// AsFloat64 returns the buffer as a []float64. Panics on dtype mismatch.
func (t *RawTensor) AsFloat64() []float64 { return viewAs[float64](t, Float64) }

// AsInt32 returns the buffer as a []int32. Panics on dtype mismatch.
func (t *RawTensor) AsInt32() []int32 { return viewAs[int32](t, Int32) }

// AsInt64 returns the buffer as a []int64. Panics on dtype mismatch.
func (t *RawTensor) AsInt64() []int64 { return viewAs[int64](t, Int64) }

// AsUint8 returns the buffer as a []uint8. Panics on dtype mismatch.
func (t *RawTensor) AsUint8() []uint8 { return viewAs[uint8](t, Uint8) }

// AsBool returns the buffer as a []bool. Panics on dtype mismatch.
func (t *RawTensor) AsBool() []bool { return viewAs[bool](t, Bool) }

func (t *RawTensor) String() string {
	return fmt.Sprintf("RawTensor(shape=%v, dtype=%s, device=%s)", t.shape, t.dtype, t.device)
}
