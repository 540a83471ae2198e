// Copyright 2026 Optic ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn exposes the neural network building blocks: layers,
// losses, and the classifier builder.
package nn

import (
	"math/rand"

	"github.com/optic-ml/optic/internal/nn"
	"github.com/optic-ml/optic/internal/tensor"
)

// Module is a network component.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named trainable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// Linear is a fully connected layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// Conv2D is a 2D convolution layer.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// Conv2DConfig describes a convolution layer.
type Conv2DConfig = nn.Conv2DConfig

// MaxPool2D is a max pooling layer.
type MaxPool2D[B tensor.Backend] = nn.MaxPool2D[B]

// Flatten collapses feature maps into dense rows.
type Flatten[B tensor.Backend] = nn.Flatten[B]

// ReLU applies max(x, 0).
type ReLU[B tensor.Backend] = nn.ReLU[B]

// Softmax turns logits into probabilities.
type Softmax[B tensor.Backend] = nn.Softmax[B]

// CrossEntropyLoss is the mean cross-entropy against one-hot targets.
type CrossEntropyLoss[B tensor.Backend] = nn.CrossEntropyLoss[B]

// ClassifierConfig describes the canonical small-image CNN.
type ClassifierConfig = nn.ClassifierConfig

// NewSequential creates a module chain.
func NewSequential[B tensor.Backend](layers ...Module[B]) *Sequential[B] {
	return nn.NewSequential(layers...)
}

// NewLinear creates a fully connected layer.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, rng *rand.Rand, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, rng, backend)
}

// NewConv2D creates a convolution layer.
func NewConv2D[B tensor.Backend](cfg Conv2DConfig, rng *rand.Rand, backend B) *Conv2D[B] {
	return nn.NewConv2D(cfg, rng, backend)
}

// NewMaxPool2D creates a pooling layer.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride int, backend B) *MaxPool2D[B] {
	return nn.NewMaxPool2D(kernelSize, stride, backend)
}

// NewFlatten creates a flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// NewSoftmax creates a softmax activation.
func NewSoftmax[B tensor.Backend]() *Softmax[B] {
	return nn.NewSoftmax[B]()
}

// NewCrossEntropyLoss creates the classification loss.
func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return nn.NewCrossEntropyLoss(backend)
}

// NewParameter wraps a tensor as a named parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// DefaultClassifierConfig returns the CIFAR-10 geometry.
func DefaultClassifierConfig() ClassifierConfig {
	return nn.DefaultClassifierConfig()
}

// BuildClassifier assembles the canonical conv/pool/dense classifier.
func BuildClassifier[B tensor.Backend](cfg ClassifierConfig, backend B) (*Sequential[B], error) {
	return nn.BuildClassifier(cfg, backend)
}

// Accuracy returns the fraction of argmax predictions matching labels.
func Accuracy[B tensor.Backend](outputs *tensor.Tensor[float32, B], labels []int32) (float64, error) {
	return nn.Accuracy(outputs, labels)
}
