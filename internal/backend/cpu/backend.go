// Package cpu implements the host execution path for the weft compute
// kernels: causal grouped-query self-attention, rotary position embedding,
// RMS normalization, embedding gather, linear projection, SwiGLU gating and
// arg-max reduction.
//
// Every kernel follows the same contract: operands are caller-allocated
// views that share one host device, are contiguous, and are shape- and
// dtype-compatible per the kernel's rules. Validation runs to completion
// before any output byte is written, so a failed call never leaves a
// partially written output. Arithmetic accumulates in float32 regardless of
// the operands' storage encoding; compact encodings are converted only at
// the element load/store boundary.
package cpu

import (
	"github.com/weft-ml/weft/internal/device"
	"github.com/weft-ml/weft/internal/parallel"
)

// Backend computes kernels on host-resident tensors.
//
// Kernels whose rows are independent (attention, linear, rms norm) fan out
// across goroutines; small operands run sequentially.
type Backend struct {
	par parallel.Config
}

// New creates a CPU backend sized to the machine.
func New() *Backend {
	return &Backend{par: parallel.DefaultConfig()}
}

// NewSequential creates a CPU backend that never spawns goroutines.
func NewSequential() *Backend {
	return &Backend{par: parallel.Config{}}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "CPU"
}

// Device returns the device kind this backend computes on.
func (b *Backend) Device() device.Device {
	return device.CPU
}
