package cpu

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/weft-ml/weft/internal/parallel"
	"github.com/weft-ml/weft/internal/tensor"
)

// RMSNorm normalizes each row of in by its root-mean-square and scales it by
// weight: out[b][i] = weight[i] * in[b][i] / sqrt(mean(in[b]²) + eps).
//
// in and out are [batch, hidden]; weight is [hidden].
func (b *Backend) RMSNorm(out, in, weight *tensor.Tensor, eps float32) error {
	const op = "rms_norm"
	operands := []operand{{"out", out}, {"in", in}, {"weight", weight}}

	if err := checkSameDevice(op, operands); err != nil {
		return err
	}
	if err := checkHost(op, out); err != nil {
		return err
	}
	if err := checkContiguous(op, operands); err != nil {
		return err
	}
	if err := checkRank(op, "out", out, 2); err != nil {
		return err
	}
	if err := checkRank(op, "in", in, 2); err != nil {
		return err
	}
	if err := checkRank(op, "weight", weight, 1); err != nil {
		return err
	}

	batch, hidden := in.Shape()[0], in.Shape()[1]
	if !out.Shape().Equal(in.Shape()) {
		return fmt.Errorf("%s: out shape %v does not match in shape %v", op, out.Shape(), in.Shape())
	}
	if weight.Shape()[0] != hidden {
		return fmt.Errorf("%s: weight length %d does not match hidden size %d", op, weight.Shape()[0], hidden)
	}
	if err := checkSameDType(op, operands[0], operands[1:]...); err != nil {
		return err
	}

	switch out.DType() {
	case tensor.Float32:
		rmsNormRows(out.AsFloat32(), in.AsFloat32(), weight.AsFloat32(), batch, hidden, eps, f32Codec, b.par)
	case tensor.Float16:
		rmsNormRows(out.AsFloat16(), in.AsFloat16(), weight.AsFloat16(), batch, hidden, eps, f16Codec, b.par)
	case tensor.BFloat16:
		rmsNormRows(out.AsBFloat16(), in.AsBFloat16(), weight.AsBFloat16(), batch, hidden, eps, bf16Codec, b.par)
	default:
		return errUnsupportedDType(op, out.DType())
	}
	return nil
}

// Rows normalize independently, so they fan out across goroutines.
func rmsNormRows[T any](out, in, weight []T, batch, hidden int, eps float32, c codec[T], par parallel.Config) {
	parallel.For(batch, func(b int) {
		row := b * hidden

		sumSq := float32(0)
		for i := 0; i < hidden; i++ {
			v := c.toWide(in[row+i])
			sumSq += v * v
		}
		scale := 1 / math32.Sqrt(sumSq/float32(hidden)+eps)

		for i := 0; i < hidden; i++ {
			out[row+i] = c.fromWide(c.toWide(weight[i]) * c.toWide(in[row+i]) * scale)
		}
	}, par)
}
