package optim

import (
	"math"

	"github.com/optic-ml/optic/internal/nn"
	"github.com/optic-ml/optic/internal/tensor"
)

// Adam implements adaptive moment estimation (Kingma & Ba, 2014):
// exponential moving averages of the gradient and its square, with
// bias correction for the zero initialization.
//
//	m = beta1*m + (1-beta1)*g
//	v = beta2*v + (1-beta2)*g²
//	p = p - lr * (m / (1-beta1^t)) / (sqrt(v / (1-beta2^t)) + eps)
type Adam[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	cfg    AdamConfig
	m      [][]float32
	v      [][]float32
	t      int
}

// AdamConfig holds the Adam hyperparameters. Zero values fall back to
// the standard defaults.
type AdamConfig struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64
}

func (c AdamConfig) withDefaults() AdamConfig {
	if c.LR == 0 {
		c.LR = 0.001
	}
	if c.Beta1 == 0 {
		c.Beta1 = 0.9
	}
	if c.Beta2 == 0 {
		c.Beta2 = 0.999
	}
	if c.Eps == 0 {
		c.Eps = 1e-8
	}
	return c
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], cfg AdamConfig) *Adam[B] {
	a := &Adam[B]{params: params, cfg: cfg.withDefaults()}
	a.m = make([][]float32, len(params))
	a.v = make([][]float32, len(params))
	for i, p := range params {
		a.m[i] = make([]float32, p.NumElements())
		a.v[i] = make([]float32, p.NumElements())
	}
	return a
}

func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++
	c1 := 1 - math.Pow(a.cfg.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.cfg.Beta2, float64(a.t))
	lr := float32(a.cfg.LR)
	beta1 := float32(a.cfg.Beta1)
	beta2 := float32(a.cfg.Beta2)
	eps := float32(a.cfg.Eps)

	for i, p := range a.params {
		grad, ok := grads[p.Tensor().Raw()]
		if !ok {
			continue
		}
		p.SetGrad(grad)

		data := p.Tensor().Raw().AsFloat32()
		gv := grad.AsFloat32()
		m, v := a.m[i], a.v[i]

		for j := range data {
			g := gv[j]
			m[j] = beta1*m[j] + (1-beta1)*g
			v[j] = beta2*v[j] + (1-beta2)*g*g
			mHat := m[j] / float32(c1)
			vHat := v[j] / float32(c2)
			data[j] -= lr * mHat / (float32(math.Sqrt(float64(vHat))) + eps)
		}
	}
}

func (a *Adam[B]) ZeroGrad() {
	for _, p := range a.params {
		p.SetGrad(nil)
	}
}

func (a *Adam[B]) LR() float64 { return a.cfg.LR }

// NumSteps returns how many updates have been applied. Moment state
// carries across training runs, so a resumed run continues the count.
func (a *Adam[B]) NumSteps() int { return a.t }
