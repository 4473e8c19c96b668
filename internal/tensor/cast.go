package tensor

import (
	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// Element-encoding casts between the compact storage encodings and the wide
// (float32) accumulation encoding. Every kernel routes arithmetic through
// float32 and converts only at its load/store boundary, so precision loss is
// bounded to one rounding step per element per kernel.

// Float16ToFloat32 decodes IEEE half bits to float32.
func Float16ToFloat32(bits uint16) float32 {
	return float16.Frombits(bits).Float32()
}

// Float32ToFloat16 encodes a float32 to IEEE half bits, rounding to nearest even.
func Float32ToFloat16(f float32) uint16 {
	return float16.Fromfloat32(f).Bits()
}

// BFloat16ToFloat32 decodes brain-float bits to float32.
func BFloat16ToFloat32(bits uint16) float32 {
	return bfloat16.ToFloat32(bfloat16.BF16(bits))
}

// Float32ToBFloat16 encodes a float32 to brain-float bits.
func Float32ToBFloat16(f float32) uint16 {
	return uint16(bfloat16.FromFloat32(f))
}
