// Copyright 2025 Weft ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the host execution path for the weft kernels.
//
// # Overview
//
// The CPU backend implements:
//   - Causal grouped-query self-attention
//   - Rotary position embedding (RoPE)
//   - RMS normalization, linear projection, embedding gather
//   - SwiGLU gating and arg-max reduction
//
// All kernels validate their operands (device, contiguity, shape, dtype)
// before writing anything, accumulate in float32 and convert compact
// encodings (float16, bfloat16) only at element load/store boundaries.
// Output views are always allocated by the caller.
package cpu
