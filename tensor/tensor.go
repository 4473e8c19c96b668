// Copyright 2025 Weft ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/weft-ml/weft/internal/device"
	"github.com/weft-ml/weft/internal/tensor"
)

// Tensor is a strided view over shared Storage.
//
// Tensor provides:
//   - Shape, stride and encoding inspection via Shape(), Strides(), DType()
//   - Zero-copy layout transforms via Permute(), View(), Slice()
//   - Materialization via Contiguous() and device transfer via To()
//   - Typed data access via AsFloat32(), AsInt64(), etc.
type Tensor = tensor.Tensor

// Storage is the reference-counted raw memory block backing one or more views.
type Storage = tensor.Storage

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// DataType represents runtime type information for tensors.
type DataType = tensor.DataType

// Supported data types for tensors.
const (
	Float32  = tensor.Float32
	Float16  = tensor.Float16
	BFloat16 = tensor.BFloat16
	Int8     = tensor.Int8
	Int16    = tensor.Int16
	Int32    = tensor.Int32
	Int64    = tensor.Int64
	Uint8    = tensor.Uint8
	Uint16   = tensor.Uint16
	Uint32   = tensor.Uint32
	Uint64   = tensor.Uint64
	Bool     = tensor.Bool
	Byte     = tensor.Byte
)

// Device identifies a kind of compute device.
type Device = device.Device

// Supported device kinds. Only CPU has an in-tree execution path; the rest
// require an external Runtime installed with SetRuntime.
const (
	CPU    = device.CPU
	CUDA   = device.CUDA
	WebGPU = device.WebGPU
)

// Runtime is the external device-runtime collaborator for accelerator
// allocation and transfer.
type Runtime = device.Runtime

// New allocates a zeroed tensor of the given shape and encoding on a device.
func New(shape Shape, dtype DataType, dev Device, deviceID int) (*Tensor, error) {
	return tensor.New(shape, dtype, dev, deviceID)
}

// SetRuntime installs a device runtime. Call once at startup, before any
// tensor is created on an accelerator device.
func SetRuntime(r Runtime) {
	tensor.SetRuntime(r)
}
