package cpu

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/weft-ml/weft/internal/tensor"
)

// SwiGLU computes the gated activation out = up * (gate / (1 + exp(-gate)))
// elementwise over 2-D operands of identical shape.
func (b *Backend) SwiGLU(out, gate, up *tensor.Tensor) error {
	const op = "swiglu"
	operands := []operand{{"out", out}, {"gate", gate}, {"up", up}}

	if err := checkSameDevice(op, operands); err != nil {
		return err
	}
	if err := checkHost(op, out); err != nil {
		return err
	}
	if err := checkContiguous(op, operands); err != nil {
		return err
	}
	for _, o := range operands {
		if err := checkRank(op, o.name, o.t, 2); err != nil {
			return err
		}
	}
	if !out.Shape().Equal(gate.Shape()) || !out.Shape().Equal(up.Shape()) {
		return fmt.Errorf("%s: shape mismatch: out %v, gate %v, up %v", op, out.Shape(), gate.Shape(), up.Shape())
	}
	if err := checkSameDType(op, operands[0], operands[1:]...); err != nil {
		return err
	}

	switch out.DType() {
	case tensor.Float32:
		swiglu(out.AsFloat32(), gate.AsFloat32(), up.AsFloat32(), f32Codec)
	case tensor.Float16:
		swiglu(out.AsFloat16(), gate.AsFloat16(), up.AsFloat16(), f16Codec)
	case tensor.BFloat16:
		swiglu(out.AsBFloat16(), gate.AsBFloat16(), up.AsBFloat16(), bf16Codec)
	default:
		return errUnsupportedDType(op, out.DType())
	}
	return nil
}

func swiglu[T any](out, gate, up []T, c codec[T]) {
	for i := range out {
		g := c.toWide(gate[i])
		swish := g / (1 + math32.Exp(-g))
		out[i] = c.fromWide(c.toWide(up[i]) * swish)
	}
}
