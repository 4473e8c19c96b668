package cpu

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// ArgMax finds the maximum element of a 1-D operand and writes its index
// (int64) into maxIdx and its value (same dtype as vals) into maxVal. Both
// outputs are single-element tensors. Ties resolve to the first occurrence.
// An empty operand is an error.
func (b *Backend) ArgMax(maxIdx, maxVal, vals *tensor.Tensor) error {
	const op = "argmax"
	operands := []operand{{"max_idx", maxIdx}, {"max_val", maxVal}, {"vals", vals}}

	if err := checkSameDevice(op, operands); err != nil {
		return err
	}
	if err := checkHost(op, vals); err != nil {
		return err
	}
	if err := checkContiguous(op, operands); err != nil {
		return err
	}
	if err := checkRank(op, "vals", vals, 1); err != nil {
		return err
	}
	if vals.NumElements() == 0 {
		return fmt.Errorf("%s: empty operand", op)
	}
	if maxIdx.NumElements() != 1 || maxVal.NumElements() != 1 {
		return fmt.Errorf("%s: max_idx and max_val must hold a single element, got %d and %d",
			op, maxIdx.NumElements(), maxVal.NumElements())
	}
	if err := checkDType(op, "max_idx", maxIdx, tensor.Int64); err != nil {
		return err
	}
	if err := checkSameDType(op, operands[2], operands[1]); err != nil {
		return err
	}

	idx := maxIdx.AsInt64()
	switch vals.DType() {
	case tensor.Float32:
		i, v := argmaxWide(vals.AsFloat32(), f32Codec)
		idx[0], maxVal.AsFloat32()[0] = int64(i), v
	case tensor.Float16:
		i, v := argmaxWide(vals.AsFloat16(), f16Codec)
		idx[0], maxVal.AsFloat16()[0] = int64(i), v
	case tensor.BFloat16:
		i, v := argmaxWide(vals.AsBFloat16(), bf16Codec)
		idx[0], maxVal.AsBFloat16()[0] = int64(i), v
	case tensor.Int32:
		i, v := argmaxOrdered(vals.AsInt32())
		idx[0], maxVal.AsInt32()[0] = int64(i), v
	case tensor.Int64:
		i, v := argmaxOrdered(vals.AsInt64())
		idx[0], maxVal.AsInt64()[0] = int64(i), v
	default:
		return errUnsupportedDType(op, vals.DType())
	}
	return nil
}

// argmaxWide compares through the wide encoding and converts the winning
// value back exactly once.
func argmaxWide[T any](vals []T, c codec[T]) (int, T) {
	best := c.toWide(vals[0])
	bestIdx := 0
	for i := 1; i < len(vals); i++ {
		if v := c.toWide(vals[i]); v > best {
			best = v
			bestIdx = i
		}
	}
	return bestIdx, vals[bestIdx]
}

func argmaxOrdered[T int32 | int64](vals []T) (int, T) {
	best := vals[0]
	bestIdx := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] > best {
			best = vals[i]
			bestIdx = i
		}
	}
	return bestIdx, vals[bestIdx]
}
