package optim

import (
	"github.com/optic-ml/optic/internal/nn"
	"github.com/optic-ml/optic/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] struct {
	params   []*nn.Parameter[B]
	lr       float32
	momentum float32
	velocity [][]float32
}

// SGDConfig holds the SGD hyperparameters.
type SGDConfig struct {
	LR       float64
	Momentum float64
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], cfg SGDConfig) *SGD[B] {
	if cfg.LR == 0 {
		cfg.LR = 0.01
	}
	s := &SGD[B]{params: params, lr: float32(cfg.LR), momentum: float32(cfg.Momentum)}
	if cfg.Momentum != 0 {
		s.velocity = make([][]float32, len(params))
		for i, p := range params {
			s.velocity[i] = make([]float32, p.NumElements())
		}
	}
	return s
}

func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for i, p := range s.params {
		grad, ok := grads[p.Tensor().Raw()]
		if !ok {
			continue
		}
		p.SetGrad(grad)

		data := p.Tensor().Raw().AsFloat32()
		gv := grad.AsFloat32()

		if s.velocity == nil {
			for j := range data {
				data[j] -= s.lr * gv[j]
			}
			continue
		}
		vel := s.velocity[i]
		for j := range data {
			vel[j] = s.momentum*vel[j] + gv[j]
			data[j] -= s.lr * vel[j]
		}
	}
}

func (s *SGD[B]) ZeroGrad() {
	for _, p := range s.params {
		p.SetGrad(nil)
	}
}

func (s *SGD[B]) LR() float64 { return float64(s.lr) }
