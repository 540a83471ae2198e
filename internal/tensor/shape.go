package tensor

import (
	"fmt"
	"slices"
)

// Shape describes the dimensions of a tensor.
// An empty shape denotes a scalar.
type Shape []int

// NumElements returns the total number of elements for the shape.
// A scalar has one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("shape %v: dimension %d must be positive, got %d", []int(s), i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// ComputeStrides returns row-major strides for the shape.
// The last dimension is contiguous (stride 1).
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	stride := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= s[i]
	}
	return strides
}

func (s Shape) String() string {
	return fmt.Sprintf("%v", []int(s))
}

// BroadcastShapes computes the result shape of broadcasting a against b
// using NumPy rules: shapes align from the right, and each dimension pair
// must be equal or one of them must be 1.
func BroadcastShapes(a, b Shape) (Shape, error) {
	n := max(len(a), len(b))
	out := make(Shape, n)

	for i := 0; i < n; i++ {
		dimA, dimB := 1, 1
		if idx := len(a) - 1 - i; idx >= 0 {
			dimA = a[idx]
		}
		if idx := len(b) - 1 - i; idx >= 0 {
			dimB = b[idx]
		}

		switch {
		case dimA == dimB:
			out[n-1-i] = dimA
		case dimA == 1:
			out[n-1-i] = dimB
		case dimB == 1:
			out[n-1-i] = dimA
		default:
			return nil, fmt.Errorf("shapes %v and %v are not broadcastable", a, b)
		}
	}
	return out, nil
}
