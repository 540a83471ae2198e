package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements()) // scalar
	assert.Equal(t, 5, Shape{5}.NumElements())
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Shape{2, 3}.Validate())
	assert.NoError(t, Shape{}.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1, 3}.Validate())
}

func TestShapeComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{1}, Shape{7}.ComputeStrides())
}

func TestShapeEqualClone(t *testing.T) {
	s := Shape{2, 3}
	c := s.Clone()
	assert.True(t, s.Equal(c))
	c[0] = 9
	assert.False(t, s.Equal(c))
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b, want Shape
	}{
		{Shape{2, 3}, Shape{2, 3}, Shape{2, 3}},
		{Shape{2, 1}, Shape{2, 3}, Shape{2, 3}},
		{Shape{3}, Shape{2, 3}, Shape{2, 3}},
		{Shape{1, 4, 1, 1}, Shape{2, 4, 5, 5}, Shape{2, 4, 5, 5}},
		{Shape{}, Shape{2, 3}, Shape{2, 3}},
	}
	for _, tt := range tests {
		got, err := BroadcastShapes(tt.a, tt.b)
		require.NoError(t, err)
		assert.True(t, got.Equal(tt.want), "broadcast(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
	}

	_, err := BroadcastShapes(Shape{2, 3}, Shape{2, 4})
	assert.Error(t, err)
}
