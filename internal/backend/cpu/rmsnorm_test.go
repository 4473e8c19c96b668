package cpu

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weft-ml/weft/internal/tensor"
)

func TestRMSNorm_ConstantRow(t *testing.T) {
	b := New()

	// A row of a constant c normalizes to c/sqrt(c²+eps) in every slot.
	const c, eps = float32(3), float32(1e-5)
	in := newF32(t, tensor.Shape{1, 4}, c, c, c, c)
	weight := newF32(t, tensor.Shape{4}, 1, 1, 1, 1)
	out := newF32(t, tensor.Shape{1, 4})

	require.NoError(t, b.RMSNorm(out, in, weight, eps))

	want := c / math32.Sqrt(c*c+eps)
	for _, got := range out.AsFloat32() {
		assert.InDelta(t, want, got, 1e-6)
	}
}

func TestRMSNorm_WeightScaling(t *testing.T) {
	b := New()

	in := newF32(t, tensor.Shape{2, 2}, 1, 1, 2, 2)
	weight := newF32(t, tensor.Shape{2}, 2, 3)
	out := newF32(t, tensor.Shape{2, 2})

	require.NoError(t, b.RMSNorm(out, in, weight, 0))

	// Each row is constant, so the normalized value is ±1 up to eps and the
	// output is just the weight vector row by row.
	got := out.AsFloat32()
	assert.InDelta(t, 2, got[0], 1e-5)
	assert.InDelta(t, 3, got[1], 1e-5)
	assert.InDelta(t, 2, got[2], 1e-5)
	assert.InDelta(t, 3, got[3], 1e-5)
}

func TestRMSNorm_RowsIndependent(t *testing.T) {
	b := New()

	in := newF32(t, tensor.Shape{2, 2}, 1, 3, 100, 300)
	weight := newF32(t, tensor.Shape{2}, 1, 1)
	out := newF32(t, tensor.Shape{2, 2})

	require.NoError(t, b.RMSNorm(out, in, weight, 0))

	// The second row is the first scaled by 100; after per-row normalization
	// both rows are identical.
	got := out.AsFloat32()
	assert.InDelta(t, got[0], got[2], 1e-5)
	assert.InDelta(t, got[1], got[3], 1e-5)
}

func TestRMSNorm_HalfPrecision(t *testing.T) {
	b := New()

	vals := []float32{0.5, -1, 2, 0.25}
	w := []float32{1, 0.5, 2, 1}

	wantOut := newF32(t, tensor.Shape{1, 4})
	require.NoError(t, b.RMSNorm(wantOut,
		newF32(t, tensor.Shape{1, 4}, vals...),
		newF32(t, tensor.Shape{4}, w...), 1e-5))
	want := wantOut.AsFloat32()

	out := newF16(t, tensor.Shape{1, 4})
	require.NoError(t, b.RMSNorm(out,
		newF16(t, tensor.Shape{1, 4}, vals...),
		newF16(t, tensor.Shape{4}, w...), 1e-5))
	for i, got := range f16Values(out) {
		assert.InDelta(t, want[i], got, 0.01)
	}
}

func TestRMSNorm_Validation(t *testing.T) {
	b := New()

	in := newF32(t, tensor.Shape{2, 3})
	weight := newF32(t, tensor.Shape{3})
	out := newF32(t, tensor.Shape{2, 3})

	t.Run("weight length", func(t *testing.T) {
		short := newF32(t, tensor.Shape{2})
		err := b.RMSNorm(out, in, short, 1e-5)
		require.ErrorContains(t, err, "hidden size")
	})

	t.Run("shape mismatch", func(t *testing.T) {
		badOut := newF32(t, tensor.Shape{3, 3})
		err := b.RMSNorm(badOut, in, weight, 1e-5)
		require.ErrorContains(t, err, "shape")
	})

	t.Run("dtype mismatch", func(t *testing.T) {
		badW := newF16(t, tensor.Shape{3})
		err := b.RMSNorm(out, in, badW, 1e-5)
		require.ErrorContains(t, err, "dtype")
	})
}
