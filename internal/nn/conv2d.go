package nn

import (
	"math/rand"

	"github.com/optic-ml/optic/internal/tensor"
)

// Conv2D is a 2D convolution layer over NCHW input with a square
// kernel. Weight layout is [outChannels, inChannels, kernel, kernel];
// the bias has one entry per output channel.
type Conv2D[B tensor.Backend] struct {
	weight  *Parameter[B]
	bias    *Parameter[B]
	stride  int
	padding int
	backend B
}

// Conv2DConfig describes a convolution layer.
type Conv2DConfig struct {
	InChannels  int
	OutChannels int
	KernelSize  int
	Stride      int
	Padding     int
}

// NewConv2D creates a convolution layer with Xavier-initialized
// weights and zero bias.
func NewConv2D[B tensor.Backend](cfg Conv2DConfig, rng *rand.Rand, backend B) *Conv2D[B] {
	k := cfg.KernelSize
	fanIn := cfg.InChannels * k * k
	fanOut := cfg.OutChannels * k * k

	w := tensor.FromSlice(
		xavierUniform(rng, cfg.OutChannels*cfg.InChannels*k*k, fanIn, fanOut),
		tensor.Shape{cfg.OutChannels, cfg.InChannels, k, k}, backend)
	b := tensor.Zeros[float32](tensor.Shape{cfg.OutChannels}, backend)

	return &Conv2D[B]{
		weight:  NewParameter("weight", w),
		bias:    NewParameter("bias", b),
		stride:  max(cfg.Stride, 1),
		padding: cfg.Padding,
		backend: backend,
	}
}

func (c *Conv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	raw := c.backend.Conv2D(input.Raw(), c.weight.Tensor().Raw(), c.bias.Tensor().Raw(), c.stride, c.padding)
	return tensor.FromRaw[float32](raw, c.backend)
}

func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weight, c.bias}
}
