package tensor

import (
	"bytes"
	"testing"

	"github.com/weft-ml/weft/internal/device"
)

// Test helpers

func mustNew(t *testing.T, shape Shape, dtype DataType) *Tensor {
	t.Helper()
	tn, err := New(shape, dtype, device.CPU, 0)
	if err != nil {
		t.Fatalf("New(%v, %s) failed: %v", shape, dtype, err)
	}
	return tn
}

func fillFloat32(tn *Tensor, vals []float32) {
	copy(tn.AsFloat32(), vals)
}

func iotaFloat32(n int) []float32 {
	vals := make([]float32, n)
	for i := range vals {
		vals[i] = float32(i)
	}
	return vals
}

// Creation

func TestNewRowMajorStrides(t *testing.T) {
	tests := []struct {
		shape   Shape
		strides []int
	}{
		{Shape{5}, []int{1}},
		{Shape{3, 4}, []int{4, 1}},
		{Shape{2, 3, 4}, []int{12, 4, 1}},
		{Shape{}, []int{}},
	}

	for _, tt := range tests {
		tn := mustNew(t, tt.shape, Float32)
		got := tn.Strides()
		if len(got) != len(tt.strides) {
			t.Fatalf("shape %v: strides %v, want %v", tt.shape, got, tt.strides)
		}
		for i := range got {
			if got[i] != tt.strides[i] {
				t.Errorf("shape %v: strides %v, want %v", tt.shape, got, tt.strides)
			}
		}
		if !tn.IsContiguous() {
			t.Errorf("shape %v: freshly created tensor not contiguous", tt.shape)
		}
		tn.Release()
	}
}

func TestNewZeroed(t *testing.T) {
	tn := mustNew(t, Shape{4, 4}, Float32)
	defer tn.Release()
	for i, v := range tn.AsFloat32() {
		if v != 0 {
			t.Fatalf("element %d = %v, want 0", i, v)
		}
	}
}

func TestNewInvalidShape(t *testing.T) {
	if _, err := New(Shape{3, 0}, Float32, device.CPU, 0); err == nil {
		t.Error("New with zero dimension should fail")
	}
	if _, err := New(Shape{-2}, Float32, device.CPU, 0); err == nil {
		t.Error("New with negative dimension should fail")
	}
}

func TestNewUnsupportedDevice(t *testing.T) {
	if _, err := New(Shape{2}, Float32, device.CUDA, 0); err == nil {
		t.Error("New on CUDA with host runtime should fail")
	}
}

// Permute

func TestPermute(t *testing.T) {
	tn := mustNew(t, Shape{2, 3, 4}, Float32)
	defer tn.Release()

	p, err := tn.Permute([]int{2, 0, 1})
	if err != nil {
		t.Fatalf("Permute failed: %v", err)
	}
	defer p.Release()

	if !p.Shape().Equal(Shape{4, 2, 3}) {
		t.Errorf("permuted shape = %v, want [4 2 3]", p.Shape())
	}
	want := []int{1, 12, 4}
	for i, s := range p.Strides() {
		if s != want[i] {
			t.Errorf("permuted strides = %v, want %v", p.Strides(), want)
		}
	}
	if p.IsContiguous() {
		t.Error("permuted tensor should not be contiguous")
	}
	if p.Storage() != tn.Storage() {
		t.Error("permute must share storage")
	}
}

func TestPermuteErrors(t *testing.T) {
	tn := mustNew(t, Shape{2, 3}, Float32)
	defer tn.Release()

	cases := [][]int{
		{0},       // wrong length
		{0, 2},    // out of range
		{1, 1},    // duplicate
		{-1, 0},   // negative
		{0, 1, 2}, // too long
	}
	for _, order := range cases {
		if _, err := tn.Permute(order); err == nil {
			t.Errorf("Permute(%v) should fail", order)
		}
	}
}

// View

func TestViewRoundTrip(t *testing.T) {
	tn := mustNew(t, Shape{3, 4}, Float32)
	defer tn.Release()
	fillFloat32(tn, iotaFloat32(12))

	v, err := tn.View(Shape{2, 6})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	defer v.Release()

	back, err := v.View(Shape{3, 4})
	if err != nil {
		t.Fatalf("View back failed: %v", err)
	}
	defer back.Release()

	if !back.Shape().Equal(tn.Shape()) {
		t.Errorf("round-trip shape = %v, want %v", back.Shape(), tn.Shape())
	}
	orig := tn.AsFloat32()
	for i, got := range back.AsFloat32() {
		if got != orig[i] {
			t.Fatalf("round-trip element %d = %v, want %v", i, got, orig[i])
		}
	}
}

func TestViewErrors(t *testing.T) {
	tn := mustNew(t, Shape{2, 3}, Float32)
	defer tn.Release()

	if _, err := tn.View(Shape{7}); err == nil {
		t.Error("View with mismatched element count should fail")
	}

	p, err := tn.Permute([]int{1, 0})
	if err != nil {
		t.Fatalf("Permute failed: %v", err)
	}
	defer p.Release()
	if _, err := p.View(Shape{6}); err == nil {
		t.Error("View of non-contiguous tensor should fail")
	}
}

// Slice

func TestSlice(t *testing.T) {
	tn := mustNew(t, Shape{4, 3}, Float32)
	defer tn.Release()
	fillFloat32(tn, iotaFloat32(12))

	s, err := tn.Slice(0, 1, 3)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	defer s.Release()

	if !s.Shape().Equal(Shape{2, 3}) {
		t.Errorf("sliced shape = %v, want [2 3]", s.Shape())
	}
	// Rows 1 and 2 of the source.
	got := s.AsFloat32()[:6]
	for i := 0; i < 6; i++ {
		if got[i] != float32(3+i) {
			t.Fatalf("sliced element %d = %v, want %v", i, got[i], float32(3+i))
		}
	}
}

func TestSliceComposition(t *testing.T) {
	tn := mustNew(t, Shape{10, 2}, Float32)
	defer tn.Release()
	fillFloat32(tn, iotaFloat32(20))

	// slice(slice(v, d, a, b), d, x, y) == slice(v, d, a+x, a+y)
	outer, err := tn.Slice(0, 2, 8)
	if err != nil {
		t.Fatalf("outer Slice failed: %v", err)
	}
	defer outer.Release()
	inner, err := outer.Slice(0, 1, 4)
	if err != nil {
		t.Fatalf("inner Slice failed: %v", err)
	}
	defer inner.Release()

	direct, err := tn.Slice(0, 3, 6)
	if err != nil {
		t.Fatalf("direct Slice failed: %v", err)
	}
	defer direct.Release()

	if !inner.Shape().Equal(direct.Shape()) {
		t.Fatalf("composed shape %v != direct shape %v", inner.Shape(), direct.Shape())
	}
	a, b := inner.AsFloat32()[:6], direct.AsFloat32()[:6]
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("composed element %d = %v, direct = %v", i, a[i], b[i])
		}
	}
}

func TestSliceErrors(t *testing.T) {
	tn := mustNew(t, Shape{4, 3}, Float32)
	defer tn.Release()

	cases := []struct{ dim, start, end int }{
		{2, 0, 1},  // dim out of range
		{0, -1, 2}, // negative start
		{0, 3, 2},  // start > end
		{0, 0, 5},  // end beyond extent
	}
	for _, c := range cases {
		if _, err := tn.Slice(c.dim, c.start, c.end); err == nil {
			t.Errorf("Slice(%d, %d, %d) should fail", c.dim, c.start, c.end)
		}
	}
}

// Contiguous

func TestContiguousAlias(t *testing.T) {
	tn := mustNew(t, Shape{2, 3}, Float32)
	defer tn.Release()

	c, err := tn.Contiguous()
	if err != nil {
		t.Fatalf("Contiguous failed: %v", err)
	}
	defer c.Release()
	if c.Storage() != tn.Storage() {
		t.Error("Contiguous of a contiguous tensor must alias the same storage")
	}
}

// Materializing a permutation must agree with an element-by-element gather
// through the original strides, for every permutation order.
func TestContiguousAfterPermute(t *testing.T) {
	tn := mustNew(t, Shape{2, 3, 4}, Float32)
	defer tn.Release()
	fillFloat32(tn, iotaFloat32(24))

	orders := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, order := range orders {
		p, err := tn.Permute(order)
		if err != nil {
			t.Fatalf("Permute(%v) failed: %v", order, err)
		}

		c, err := p.Contiguous()
		if err != nil {
			t.Fatalf("Contiguous after Permute(%v) failed: %v", order, err)
		}

		got := c.AsFloat32()
		src := tn.AsFloat32()
		shape, strides := p.Shape(), p.Strides()
		idx := 0
		for i := 0; i < shape[0]; i++ {
			for j := 0; j < shape[1]; j++ {
				for k := 0; k < shape[2]; k++ {
					want := src[i*strides[0]+j*strides[1]+k*strides[2]]
					if got[idx] != want {
						t.Fatalf("order %v element %d = %v, want %v", order, idx, got[idx], want)
					}
					idx++
				}
			}
		}
		if !c.IsContiguous() {
			t.Errorf("order %v: materialized tensor not contiguous", order)
		}
		c.Release()
		p.Release()
	}
}

func TestContiguousOfSlice(t *testing.T) {
	tn := mustNew(t, Shape{4, 4}, Float32)
	defer tn.Release()
	fillFloat32(tn, iotaFloat32(16))

	// Column slice: non-contiguous in memory.
	s, err := tn.Slice(1, 1, 3)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	defer s.Release()
	if s.IsContiguous() {
		t.Fatal("column slice should not be contiguous")
	}

	c, err := s.Contiguous()
	if err != nil {
		t.Fatalf("Contiguous failed: %v", err)
	}
	defer c.Release()

	want := []float32{1, 2, 5, 6, 9, 10, 13, 14}
	for i, got := range c.AsFloat32() {
		if got != want[i] {
			t.Fatalf("element %d = %v, want %v", i, got, want[i])
		}
	}
}

// Load and transfer

func TestLoad(t *testing.T) {
	tn := mustNew(t, Shape{2, 2}, Int32)
	defer tn.Release()

	raw := []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0, 4, 0, 0, 0}
	if err := tn.Load(raw); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i, v := range tn.AsInt32() {
		if v != int32(i+1) {
			t.Errorf("element %d = %d, want %d", i, v, i+1)
		}
	}

	if err := tn.Load(raw[:3]); err == nil {
		t.Error("Load with short buffer should fail")
	}
}

func TestToSameDeviceAliases(t *testing.T) {
	tn := mustNew(t, Shape{2, 2}, Float32)
	defer tn.Release()

	moved, err := tn.To(device.CPU, 0)
	if err != nil {
		t.Fatalf("To failed: %v", err)
	}
	defer moved.Release()
	if moved.Storage() != tn.Storage() {
		t.Error("To the same device must alias, not copy")
	}
}

func TestToUnsupportedDevice(t *testing.T) {
	tn := mustNew(t, Shape{2, 2}, Float32)
	defer tn.Release()
	if _, err := tn.To(device.CUDA, 0); err == nil {
		t.Error("To an accelerator with the host runtime should fail")
	}
}

// Aliasing and storage sharing

func TestAliasSharesBytes(t *testing.T) {
	tn := mustNew(t, Shape{3}, Float32)
	defer tn.Release()

	alias := tn.Alias()
	defer alias.Release()

	tn.AsFloat32()[1] = 42
	if alias.AsFloat32()[1] != 42 {
		t.Error("alias does not observe writes through the original view")
	}
}

func TestDebugNonContiguous(t *testing.T) {
	tn := mustNew(t, Shape{2, 2}, Float32)
	defer tn.Release()
	fillFloat32(tn, []float32{1, 2, 3, 4})

	p, err := tn.Permute([]int{1, 0})
	if err != nil {
		t.Fatalf("Permute failed: %v", err)
	}
	defer p.Release()

	s, err := p.Debug()
	if err != nil {
		t.Fatalf("Debug failed: %v", err)
	}
	// Transposed logical order: rows (1 3) and (2 4).
	if !bytes.Contains([]byte(s), []byte("1 3")) || !bytes.Contains([]byte(s), []byte("2 4")) {
		t.Errorf("Debug output does not walk strides:\n%s", s)
	}
}
