package nn

import (
	"fmt"
	"math/rand"

	"github.com/optic-ml/optic/internal/tensor"
)

// ClassifierConfig describes the canonical small-image CNN: two
// paired-convolution groups (conv, conv, pool), then a hidden dense
// layer, then the class logits.
type ClassifierConfig struct {
	// Input geometry, e.g. 3x32x32 for CIFAR-10, 1x28x28 for MNIST.
	InChannels int
	Height     int
	Width      int

	// Channel widths of the two groups. Both convolutions in a group
	// share the width.
	Conv1Channels int
	Conv2Channels int

	// Square kernel size, with same-padding KernelSize/2.
	KernelSize int

	// Window of both pooling stages, stride equal to the window.
	PoolSize int

	// Width of the hidden dense layer.
	HiddenSize int

	NumClasses int

	// Seed for weight initialization. The same seed builds the same
	// model.
	Seed int64
}

// DefaultClassifierConfig returns the CIFAR-10 geometry.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		InChannels:    3,
		Height:        32,
		Width:         32,
		Conv1Channels: 16,
		Conv2Channels: 32,
		KernelSize:    3,
		PoolSize:      2,
		HiddenSize:    128,
		NumClasses:    10,
		Seed:          1,
	}
}

// Validate checks the geometry before any tensors are allocated.
func (c ClassifierConfig) Validate() error {
	if c.InChannels <= 0 || c.Height <= 0 || c.Width <= 0 {
		return fmt.Errorf("classifier: invalid input geometry %dx%dx%d", c.InChannels, c.Height, c.Width)
	}
	if c.Conv1Channels <= 0 || c.Conv2Channels <= 0 {
		return fmt.Errorf("classifier: conv channels must be positive")
	}
	if c.KernelSize <= 0 || c.KernelSize > c.Height || c.KernelSize > c.Width {
		return fmt.Errorf("classifier: kernel size %d does not fit %dx%d input", c.KernelSize, c.Height, c.Width)
	}
	if c.KernelSize%2 == 0 {
		// Same-padding preserves the spatial size only for odd kernels.
		return fmt.Errorf("classifier: kernel size must be odd, got %d", c.KernelSize)
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("classifier: pool size must be positive")
	}
	if c.NumClasses < 2 {
		return fmt.Errorf("classifier: need at least 2 classes, got %d", c.NumClasses)
	}
	if c.HiddenSize <= 0 {
		return fmt.Errorf("classifier: hidden size must be positive")
	}
	h, w := c.Height, c.Width
	for i := 0; i < 2; i++ {
		h /= c.PoolSize
		w /= c.PoolSize
	}
	if h == 0 || w == 0 {
		return fmt.Errorf("classifier: pooling %d collapses %dx%d input to zero", c.PoolSize, c.Height, c.Width)
	}
	return nil
}

// flattenSize returns the dense input width after both conv/pool
// stages. Same-padding keeps the spatial size through the convs, so
// only pooling shrinks it.
func (c ClassifierConfig) flattenSize() int {
	h := c.Height / c.PoolSize / c.PoolSize
	w := c.Width / c.PoolSize / c.PoolSize
	return c.Conv2Channels * h * w
}

// BuildClassifier assembles the model: each group stacks two
// convolutions before pooling. The output layer emits logits; softmax
// happens in the loss gradient and at inspection time.
func BuildClassifier[B tensor.Backend](cfg ClassifierConfig, backend B) (*Sequential[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	conv := func(in, out int) *Conv2D[B] {
		return NewConv2D(Conv2DConfig{
			InChannels:  in,
			OutChannels: out,
			KernelSize:  cfg.KernelSize,
			Stride:      1,
			Padding:     cfg.KernelSize / 2,
		}, rng, backend)
	}

	model := NewSequential[B](
		conv(cfg.InChannels, cfg.Conv1Channels),
		NewReLU[B](),
		conv(cfg.Conv1Channels, cfg.Conv1Channels),
		NewReLU[B](),
		NewMaxPool2D(cfg.PoolSize, cfg.PoolSize, backend),
		conv(cfg.Conv1Channels, cfg.Conv2Channels),
		NewReLU[B](),
		conv(cfg.Conv2Channels, cfg.Conv2Channels),
		NewReLU[B](),
		NewMaxPool2D(cfg.PoolSize, cfg.PoolSize, backend),
		NewFlatten[B](),
		NewLinear(cfg.flattenSize(), cfg.HiddenSize, rng, backend),
		NewReLU[B](),
		NewLinear(cfg.HiddenSize, cfg.NumClasses, rng, backend),
	)
	return model, nil
}
