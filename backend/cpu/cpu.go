// Copyright 2026 Optic ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu exposes the pure-Go CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
package cpu

import (
	"github.com/optic-ml/optic/internal/backend/cpu"
)

// CPUBackend computes on the host processor.
type CPUBackend = cpu.CPUBackend

// New creates a CPU backend.
func New() *CPUBackend {
	return cpu.New()
}

// Features reports the detected SIMD capabilities of the host.
func Features() []string {
	return cpu.Features()
}

// NumCores returns the logical core count.
func NumCores() int {
	return cpu.NumCores()
}
