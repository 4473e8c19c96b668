package cpu

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/weft-ml/weft/internal/tensor"
)

// RoPE applies rotary position embedding to in and writes the result to out.
//
// in and out are [seqLen, nHeads, headDim] with an even headDim; posIDs is a
// 1-D int64 tensor of length seqLen. Position ids are read verbatim, so a
// continued-generation window can pass absolute positions rather than
// 0..seqLen-1.
//
// For half-index i the inverse frequency is theta^(2i/headDim); each pair
// (x[i], x[i+headDim/2]) is rotated by angle posID/invFreq[i].
func (b *Backend) RoPE(out, in, posIDs *tensor.Tensor, theta float32) error {
	const op = "rope"
	operands := []operand{{"out", out}, {"in", in}, {"pos_ids", posIDs}}

	if err := checkSameDevice(op, operands); err != nil {
		return err
	}
	if err := checkHost(op, out); err != nil {
		return err
	}
	if err := checkContiguous(op, operands); err != nil {
		return err
	}
	if err := checkRank(op, "out", out, 3); err != nil {
		return err
	}
	if err := checkRank(op, "in", in, 3); err != nil {
		return err
	}
	if err := checkRank(op, "pos_ids", posIDs, 1); err != nil {
		return err
	}

	seqLen, nHeads, headDim := in.Shape()[0], in.Shape()[1], in.Shape()[2]
	if !out.Shape().Equal(in.Shape()) {
		return fmt.Errorf("%s: out shape %v does not match in shape %v", op, out.Shape(), in.Shape())
	}
	if posIDs.NumElements() != seqLen {
		return fmt.Errorf("%s: pos_ids length %d does not match sequence length %d", op, posIDs.NumElements(), seqLen)
	}
	if headDim%2 != 0 {
		return fmt.Errorf("%s: head dimension %d must be even", op, headDim)
	}
	if err := checkDType(op, "pos_ids", posIDs, tensor.Int64); err != nil {
		return err
	}
	if err := checkSameDType(op, operands[0], operands[1]); err != nil {
		return err
	}

	pos := posIDs.AsInt64()
	switch out.DType() {
	case tensor.Float32:
		rotate(out.AsFloat32(), in.AsFloat32(), pos, seqLen, nHeads, headDim, theta, f32Codec)
	case tensor.Float16:
		rotate(out.AsFloat16(), in.AsFloat16(), pos, seqLen, nHeads, headDim, theta, f16Codec)
	case tensor.BFloat16:
		rotate(out.AsBFloat16(), in.AsBFloat16(), pos, seqLen, nHeads, headDim, theta, bf16Codec)
	default:
		return errUnsupportedDType(op, out.DType())
	}
	return nil
}

// rotate applies the pairwise rotation position by position. The sin/cos
// table is rebuilt per position from the precomputed inverse frequencies and
// shared across heads at that position.
func rotate[T any](out, in []T, pos []int64, seqLen, nHeads, headDim int, theta float32, c codec[T]) {
	half := headDim / 2

	invFreq := make([]float32, half)
	for i := 0; i < half; i++ {
		invFreq[i] = math32.Pow(theta, 2*float32(i)/float32(headDim))
	}

	sin := make([]float32, half)
	cos := make([]float32, half)

	for p := 0; p < seqLen; p++ {
		position := float32(pos[p])
		for i := 0; i < half; i++ {
			angle := position / invFreq[i]
			sin[i] = math32.Sin(angle)
			cos[i] = math32.Cos(angle)
		}

		for h := 0; h < nHeads; h++ {
			base := (p*nHeads + h) * headDim
			for i := 0; i < half; i++ {
				a := c.toWide(in[base+i])
				b := c.toWide(in[base+half+i])
				out[base+i] = c.fromWide(a*cos[i] - b*sin[i])
				out[base+half+i] = c.fromWide(b*cos[i] + a*sin[i])
			}
		}
	}
}
