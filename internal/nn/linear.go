package nn

import (
	"math/rand"

	"github.com/optic-ml/optic/internal/tensor"
)

// Linear is a fully connected layer computing y = x Wᵀ + b.
// The weight is stored [outFeatures, inFeatures].
type Linear[B tensor.Backend] struct {
	weight *Parameter[B]
	bias   *Parameter[B]
}

// NewLinear creates a Linear layer with Xavier-initialized weights and
// zero bias.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, rng *rand.Rand, backend B) *Linear[B] {
	w := tensor.FromSlice(
		xavierUniform(rng, inFeatures*outFeatures, inFeatures, outFeatures),
		tensor.Shape{outFeatures, inFeatures}, backend)
	b := tensor.Zeros[float32](tensor.Shape{outFeatures}, backend)

	return &Linear[B]{
		weight: NewParameter("weight", w),
		bias:   NewParameter("bias", b),
	}
}

func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.MatMul(l.weight.Tensor().Transpose()).Add(l.bias.Tensor())
}

func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}
