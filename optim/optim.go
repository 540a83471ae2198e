// Copyright 2026 Optic ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim exposes the gradient-descent optimizers.
package optim

import (
	"github.com/optic-ml/optic/internal/nn"
	"github.com/optic-ml/optic/internal/optim"
	"github.com/optic-ml/optic/internal/tensor"
)

// Optimizer updates parameters from one backward pass.
type Optimizer = optim.Optimizer

// Adam is the adaptive moment estimation optimizer.
type Adam[B tensor.Backend] = optim.Adam[B]

// AdamConfig holds the Adam hyperparameters.
type AdamConfig = optim.AdamConfig

// SGD is stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig holds the SGD hyperparameters.
type SGDConfig = optim.SGDConfig

// NewAdam creates an Adam optimizer.
//
// Example:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], cfg AdamConfig) *Adam[B] {
	return optim.NewAdam(params, cfg)
}

// NewSGD creates an SGD optimizer.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], cfg SGDConfig) *SGD[B] {
	return optim.NewSGD(params, cfg)
}
