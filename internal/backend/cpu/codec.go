package cpu

import (
	"github.com/weft-ml/weft/internal/tensor"
)

// codec couples a compact storage encoding with the float32 loads and stores
// the kernels accumulate through. Each kernel is written once against
// float32 and instantiated per encoding with one of these, so a reduced
// precision operand pays exactly one rounding step per element per kernel.
type codec[T any] struct {
	toWide   func(T) float32
	fromWide func(float32) T
}

var (
	f32Codec = codec[float32]{
		toWide:   func(v float32) float32 { return v },
		fromWide: func(v float32) float32 { return v },
	}
	f16Codec = codec[uint16]{
		toWide:   tensor.Float16ToFloat32,
		fromWide: tensor.Float32ToFloat16,
	}
	bf16Codec = codec[uint16]{
		toWide:   tensor.BFloat16ToFloat32,
		fromWide: tensor.Float32ToBFloat16,
	}
)
