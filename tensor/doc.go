// Copyright 2025 Weft ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides strided tensors over reference-counted storage.
//
// # Overview
//
// A Tensor is a view: an element encoding, a shape, per-dimension strides in
// elements and a byte offset into shared Storage. Layout transforms
// (Permute, View, Slice) restride without copying; Contiguous materializes a
// row-major copy when the strides are not canonical.
//
// # Basic Usage
//
//	import (
//	    "github.com/weft-ml/weft/backend/cpu"
//	    "github.com/weft-ml/weft/tensor"
//	)
//
//	q, _ := tensor.New(tensor.Shape{4, 8, 64}, tensor.Float32, tensor.CPU, 0)
//	k, _ := tensor.New(tensor.Shape{4, 2, 64}, tensor.Float32, tensor.CPU, 0)
//	v, _ := tensor.New(tensor.Shape{4, 2, 64}, tensor.Float32, tensor.CPU, 0)
//	out, _ := tensor.New(tensor.Shape{4, 8, 64}, tensor.Float32, tensor.CPU, 0)
//
//	backend := cpu.New()
//	err := backend.SelfAttention(out, q, k, v, 0.125)
//
// # Ownership
//
// Views share Storage by reference counting; the buffer is released when the
// last view calls Release. Any view may write through its storage — callers
// must serialize writes to overlapping views themselves.
package tensor
