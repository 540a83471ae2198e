package nn

import "github.com/optic-ml/optic/internal/tensor"

// Flatten collapses every dimension after the batch into one, turning
// [N, C, H, W] feature maps into [N, C*H*W] rows for dense layers.
type Flatten[B tensor.Backend] struct{}

func NewFlatten[B tensor.Backend]() *Flatten[B] { return &Flatten[B]{} }

func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	rest := 1
	for _, d := range shape[1:] {
		rest *= d
	}
	return input.Reshape(tensor.Shape{shape[0], rest})
}

func (f *Flatten[B]) Parameters() []*Parameter[B] { return nil }
