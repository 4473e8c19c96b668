package cpu

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// Embedding gathers rows of weight by index: out[b] = weight[index[b]].
//
// index is a 1-D int64 tensor; weight is [vocab, dim]; out is [len(index), dim].
// An index outside [0, vocab) is not an error: the corresponding output row
// is zero-filled.
func (b *Backend) Embedding(out, index, weight *tensor.Tensor) error {
	const op = "embedding"
	operands := []operand{{"out", out}, {"index", index}, {"weight", weight}}

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
	if err := checkRank(op, "index", index, 1); err != nil {
		return err
	}
	if err := checkRank(op, "weight", weight, 2); err != nil {
		return err
	}
	if err := checkDType(op, "index", index, tensor.Int64); err != nil {
		return err
	}

	vocab, dim := weight.Shape()[0], weight.Shape()[1]
	if out.Shape()[0] != index.NumElements() {
		return fmt.Errorf("%s: out batch %d does not match index length %d", op, out.Shape()[0], index.NumElements())
	}
	if out.Shape()[1] != dim {
		return fmt.Errorf("%s: out dim %d does not match weight dim %d", op, out.Shape()[1], dim)
	}
	if err := checkSameDType(op, operands[0], operands[2]); err != nil {
		return err
	}

	idx := index.AsInt64()
	switch out.DType() {
	case tensor.Float32:
		gather(out.AsFloat32(), weight.AsFloat32(), idx, vocab, dim)
	case tensor.Float16:
		gather(out.AsFloat16(), weight.AsFloat16(), idx, vocab, dim)
	case tensor.BFloat16:
		gather(out.AsBFloat16(), weight.AsBFloat16(), idx, vocab, dim)
	default:
		return errUnsupportedDType(op, out.DType())
	}
	return nil
}

func gather[T any](out, weight []T, idx []int64, vocab, dim int) {
	var zero T
	for b, id := range idx {
		dst := out[b*dim : (b+1)*dim]
		if id < 0 || id >= int64(vocab) {
			// Out-of-range index is defined behavior: zero-fill the row.
			for i := range dst {
				dst[i] = zero
			}
			continue
		}
		copy(dst, weight[int(id)*dim:(int(id)+1)*dim])
	}
}
