// Copyright 2025 Weft ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/weft-ml/weft/internal/backend/cpu"
)

// Backend computes the weft kernels on host-resident tensors.
type Backend = internalcpu.Backend

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/weft-ml/weft/backend/cpu"
//	    "github.com/weft-ml/weft/tensor"
//	)
//
//	backend := cpu.New()
//	err := backend.RMSNorm(out, in, weight, 1e-5)
func New() *Backend {
	return internalcpu.New()
}

// NewSequential creates a CPU backend that never spawns goroutines. Useful
// for deterministic profiling or when the caller manages its own pool.
func NewSequential() *Backend {
	return internalcpu.NewSequential()
}
