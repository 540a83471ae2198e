package nn

import "github.com/optic-ml/optic/internal/tensor"

// ReLU applies max(x, 0) element-wise.
type ReLU[B tensor.Backend] struct{}

func NewReLU[B tensor.Backend]() *ReLU[B] { return &ReLU[B]{} }

func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.ReLU()
}

func (r *ReLU[B]) Parameters() []*Parameter[B] { return nil }

// Softmax turns logits into a probability distribution along the last
// dimension. Classifiers emit logits and apply this only at inspection
// time; the loss works on logits directly.
type Softmax[B tensor.Backend] struct{}

func NewSoftmax[B tensor.Backend]() *Softmax[B] { return &Softmax[B]{} }

func (s *Softmax[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Softmax()
}

func (s *Softmax[B]) Parameters() []*Parameter[B] { return nil }
