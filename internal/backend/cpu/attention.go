package cpu

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/weft-ml/weft/internal/parallel"
	"github.com/weft-ml/weft/internal/tensor"
)

// SelfAttention computes causal grouped-query scaled-dot-product attention.
//
// Shapes:
//
//	q   [seqLen, nQHeads, headDim]
//	k   [totalLen, nKVHeads, headDim]
//	v   [totalLen, nKVHeads, valueDim]
//	out [seqLen, nQHeads, valueDim]
//
// nQHeads must be a multiple of nKVHeads; query head h reads key/value head
// h / (nQHeads/nKVHeads). The key/value sequence is the past prefix followed
// by the current query window, so query position p attends to key positions
// [0, p + totalLen - seqLen] inclusive and never to later ones.
func (b *Backend) SelfAttention(out, q, k, v *tensor.Tensor, scale float32) error {
	const op = "self_attention"
	operands := []operand{{"out", out}, {"q", q}, {"k", k}, {"v", v}}

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
		if err := checkRank(op, o.name, o.t, 3); err != nil {
			return err
		}
	}

	seqLen, nQHeads, headDim := q.Shape()[0], q.Shape()[1], q.Shape()[2]
	totalLen, nKVHeads := k.Shape()[0], k.Shape()[1]
	valueDim := v.Shape()[2]

	if k.Shape()[2] != headDim {
		return fmt.Errorf("%s: q head dim %d does not match k head dim %d", op, headDim, k.Shape()[2])
	}
	if v.Shape()[0] != totalLen || v.Shape()[1] != nKVHeads {
		return fmt.Errorf("%s: v shape %v does not match k shape %v", op, v.Shape(), k.Shape())
	}
	if !out.Shape().Equal(tensor.Shape{seqLen, nQHeads, valueDim}) {
		return fmt.Errorf("%s: out shape %v, want [%d %d %d]", op, out.Shape(), seqLen, nQHeads, valueDim)
	}
	if nQHeads%nKVHeads != 0 {
		return fmt.Errorf("%s: %d query heads not divisible by %d kv heads", op, nQHeads, nKVHeads)
	}
	if totalLen < seqLen {
		return fmt.Errorf("%s: total length %d shorter than query length %d", op, totalLen, seqLen)
	}
	if err := checkSameDType(op, operands[0], operands[1:]...); err != nil {
		return err
	}

	dims := attnDims{
		seqLen:   seqLen,
		totalLen: totalLen,
		nQHeads:  nQHeads,
		nKVHeads: nKVHeads,
		headDim:  headDim,
		valueDim: valueDim,
	}

	switch out.DType() {
	case tensor.Float32:
		attend(out.AsFloat32(), q.AsFloat32(), k.AsFloat32(), v.AsFloat32(), dims, scale, f32Codec, b.par)
	case tensor.Float16:
		attend(out.AsFloat16(), q.AsFloat16(), k.AsFloat16(), v.AsFloat16(), dims, scale, f16Codec, b.par)
	case tensor.BFloat16:
		attend(out.AsBFloat16(), q.AsBFloat16(), k.AsBFloat16(), v.AsBFloat16(), dims, scale, bf16Codec, b.par)
	default:
		return errUnsupportedDType(op, out.DType())
	}
	return nil
}

type attnDims struct {
	seqLen   int
	totalLen int
	nQHeads  int
	nKVHeads int
	headDim  int
	valueDim int
}

// attend runs attention for every (query head, query position) pair. Each
// pair is independent of every other: it reads only q/k/v and writes only
// its own output row, so the pairs fan out across goroutines. The result is
// identical for any worker count.
func attend[T any](out, q, k, v []T, d attnDims, scale float32, c codec[T], par parallel.Config) {
	groupSize := d.nQHeads / d.nKVHeads
	kvOffset := d.totalLen - d.seqLen

	parallel.ForBatch(d.nQHeads, d.seqLen, func(qHead, qPos int) {
		kvHead := qHead / groupSize

		qVec := make([]float32, d.headDim)
		qBase := (qPos*d.nQHeads + qHead) * d.headDim
		for i := range qVec {
			qVec[i] = c.toWide(q[qBase+i])
		}

		// Causal visibility window: all past positions plus self.
		contextLen := qPos + kvOffset + 1
		if contextLen > d.totalLen {
			contextLen = d.totalLen
		}

		scores := make([]float32, contextLen)
		maxScore := math32.Inf(-1)
		for kPos := 0; kPos < contextLen; kPos++ {
			kBase := (kPos*d.nKVHeads + kvHead) * d.headDim
			s := float32(0)
			for i := 0; i < d.headDim; i++ {
				s += qVec[i] * c.toWide(k[kBase+i])
			}
			s *= scale
			scores[kPos] = s
			if s > maxScore {
				maxScore = s
			}
		}

		// Stable softmax: shift by the max before exponentiating.
		sumExp := float32(0)
		for i := 0; i < contextLen; i++ {
			scores[i] = math32.Exp(scores[i] - maxScore)
			sumExp += scores[i]
		}
		invSum := float32(0)
		if sumExp > 0 {
			invSum = 1 / sumExp
		}

		acc := make([]float32, d.valueDim)
		for kPos := 0; kPos < contextLen; kPos++ {
			w := scores[kPos] * invSum
			vBase := (kPos*d.nKVHeads + kvHead) * d.valueDim
			for i := 0; i < d.valueDim; i++ {
				acc[i] += w * c.toWide(v[vBase+i])
			}
		}

		outBase := (qPos*d.nQHeads + qHead) * d.valueDim
		for i := 0; i < d.valueDim; i++ {
			out[outBase+i] = c.fromWide(acc[i])
		}
	}, par)
}
