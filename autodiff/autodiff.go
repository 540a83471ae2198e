// Copyright 2026 Optic ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff exposes tape-based reverse-mode differentiation.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	// ... forward pass ...
//	grads := backend.Backward(loss.Raw())
package autodiff

import (
	"github.com/optic-ml/optic/internal/autodiff"
	"github.com/optic-ml/optic/internal/tensor"
)

// AutodiffBackend decorates a backend with gradient recording.
type AutodiffBackend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// GradientTape records forward operations for the backward walk.
type GradientTape = autodiff.GradientTape

// New wraps a backend with a fresh gradient tape.
func New[B tensor.Backend](inner B) *AutodiffBackend[B] {
	return autodiff.New(inner)
}
