// Package ops defines the differentiable operations recorded on the
// gradient tape. Each operation captures the tensors of its forward
// pass and knows how to turn an output gradient into input gradients.
package ops

import "github.com/optic-ml/optic/internal/tensor"

// Operation is one recorded step of a forward pass.
type Operation interface {
	// Inputs returns the tensors gradients should flow to.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor this operation produced.
	Output() *tensor.RawTensor

	// Backward maps the gradient w.r.t. the output to gradients
	// w.r.t. each input, in the same order as Inputs. A nil entry
	// means no gradient for that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor
}
