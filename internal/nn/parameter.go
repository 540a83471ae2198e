package nn

import "github.com/optic-ml/optic/internal/tensor"

// Parameter is a named trainable tensor plus the gradient most
// recently applied to it.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.RawTensor
}

func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

func (p *Parameter[B]) Name() string { return p.name }

// Tensor returns the parameter values. Optimizers update the
// underlying buffer in place.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] { return p.tensor }

// Grad returns the gradient recorded by the last optimizer step, or
// nil before any step.
func (p *Parameter[B]) Grad() *tensor.RawTensor { return p.grad }

func (p *Parameter[B]) SetGrad(g *tensor.RawTensor) { p.grad = g }

// NumElements returns the parameter size.
func (p *Parameter[B]) NumElements() int { return p.tensor.Shape().NumElements() }
