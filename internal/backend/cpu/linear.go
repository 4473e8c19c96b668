package cpu

import (
	"fmt"

	"github.com/weft-ml/weft/internal/parallel"
	"github.com/weft-ml/weft/internal/tensor"
)

// Linear computes out = in × weightᵀ + bias.
//
// in is [batch, inFeatures]; weight is [outFeatures, inFeatures]; out is
// [batch, outFeatures]. bias is an optional [outFeatures] vector broadcast
// across the batch; pass nil for no bias.
func (b *Backend) Linear(out, in, weight, bias *tensor.Tensor) error {
	const op = "linear"
	operands := []operand{{"out", out}, {"in", in}, {"weight", weight}}
	if bias != nil {
		operands = append(operands, operand{"bias", bias})
	}

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
	if err := checkRank(op, "weight", weight, 2); err != nil {
		return err
	}
	if bias != nil {
		if err := checkRank(op, "bias", bias, 1); err != nil {
			return err
		}
	}

	batch, inFeatures := in.Shape()[0], in.Shape()[1]
	outFeatures := weight.Shape()[0]
	if weight.Shape()[1] != inFeatures {
		return fmt.Errorf("%s: weight in-features %d does not match input features %d", op, weight.Shape()[1], inFeatures)
	}
	if !out.Shape().Equal(tensor.Shape{batch, outFeatures}) {
		return fmt.Errorf("%s: out shape %v, want [%d %d]", op, out.Shape(), batch, outFeatures)
	}
	if bias != nil && bias.Shape()[0] != outFeatures {
		return fmt.Errorf("%s: bias length %d does not match out-features %d", op, bias.Shape()[0], outFeatures)
	}
	if err := checkSameDType(op, operands[0], operands[1:]...); err != nil {
		return err
	}

	dims := linearDims{batch: batch, inFeatures: inFeatures, outFeatures: outFeatures}
	switch out.DType() {
	case tensor.Float32:
		project(out.AsFloat32(), in.AsFloat32(), weight.AsFloat32(), sliceOrNil(bias, (*tensor.Tensor).AsFloat32), dims, f32Codec, b.par)
	case tensor.Float16:
		project(out.AsFloat16(), in.AsFloat16(), weight.AsFloat16(), sliceOrNil(bias, (*tensor.Tensor).AsFloat16), dims, f16Codec, b.par)
	case tensor.BFloat16:
		project(out.AsBFloat16(), in.AsBFloat16(), weight.AsBFloat16(), sliceOrNil(bias, (*tensor.Tensor).AsBFloat16), dims, bf16Codec, b.par)
	default:
		return errUnsupportedDType(op, out.DType())
	}
	return nil
}

func sliceOrNil[T any](t *tensor.Tensor, as func(*tensor.Tensor) []T) []T {
	if t == nil {
		return nil
	}
	return as(t)
}

type linearDims struct {
	batch       int
	inFeatures  int
	outFeatures int
}

// project computes one dot product per (row, output feature) pair,
// accumulating in float32. Pairs write disjoint outputs, so they fan out
// across goroutines. bias may be nil.
func project[T any](out, in, weight []T, bias []T, d linearDims, c codec[T], par parallel.Config) {
	parallel.ForBatch(d.batch, d.outFeatures, func(b, o int) {
		x := in[b*d.inFeatures : (b+1)*d.inFeatures]
		w := weight[o*d.inFeatures : (o+1)*d.inFeatures]

		acc := float32(0)
		if bias != nil {
			acc = c.toWide(bias[o])
		}
		for i := 0; i < d.inFeatures; i++ {
			acc += c.toWide(x[i]) * c.toWide(w[i])
		}
		out[b*d.outFeatures+o] = c.fromWide(acc)
	}, par)
}
