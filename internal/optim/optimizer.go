// Package optim implements gradient-descent optimizers. Optimizers own
// their per-parameter state (momentum, moment estimates) across steps;
// models hold only values and gradients.
package optim

import "github.com/optic-ml/optic/internal/tensor"

// Optimizer updates parameters from the gradients of one backward
// pass. The map is keyed by the parameter's RawTensor, matching what
// the gradient tape returns.
type Optimizer interface {
	// Step applies one update. Parameters without a gradient in the
	// map are left unchanged.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears the gradients cached on the parameters.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64
}
