// Package nn provides neural network building blocks: layers, loss
// functions, parameter containers, and the Sequential composite used
// to assemble classifiers.
package nn

import "github.com/optic-ml/optic/internal/tensor"

// Module is a network component: anything that maps an input tensor to
// an output tensor and exposes its trainable parameters.
type Module[B tensor.Backend] interface {
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	Parameters() []*Parameter[B]
}
