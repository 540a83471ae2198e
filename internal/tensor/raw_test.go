package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, Device{Type: CPU})
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(Shape{2, 3}))
	assert.Equal(t, Float32, raw.DType())
	assert.Len(t, raw.AsFloat32(), 6)

	_, err = NewRaw(Shape{2, 0}, Float32, Device{Type: CPU})
	assert.Error(t, err)
}

func TestRawTypedViewPanicsOnMismatch(t *testing.T) {
	raw, err := NewRaw(Shape{4}, Float32, Device{Type: CPU})
	require.NoError(t, err)

	assert.Panics(t, func() { raw.AsInt32() })
}

func TestRawCopyOnWrite(t *testing.T) {
	raw, err := NewRaw(Shape{3}, Float32, Device{Type: CPU})
	require.NoError(t, err)
	raw.AsFloat32()[0] = 1

	assert.True(t, raw.IsUnique())

	clone := raw.Clone()
	assert.False(t, raw.IsUnique())
	assert.False(t, clone.IsUnique())

	// Writable copy must not alias the shared buffer.
	w := raw.CloneForWrite()
	w.AsFloat32()[0] = 42
	assert.Equal(t, float32(1), clone.AsFloat32()[0])

	clone.Release()
	assert.True(t, raw.IsUnique())
}

func TestRawForceNonUnique(t *testing.T) {
	raw, err := NewRaw(Shape{2}, Float32, Device{Type: CPU})
	require.NoError(t, err)

	raw.ForceNonUnique()
	assert.False(t, raw.IsUnique())

	w := raw.CloneForWrite()
	w.AsFloat32()[0] = 5
	assert.Equal(t, float32(0), raw.AsFloat32()[0])
}

func TestRawWithShape(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, Device{Type: CPU})
	require.NoError(t, err)
	raw.AsFloat32()[5] = 7

	view, err := raw.WithShape(Shape{6})
	require.NoError(t, err)
	assert.Equal(t, float32(7), view.AsFloat32()[5])

	_, err = raw.WithShape(Shape{4})
	assert.Error(t, err)
}
