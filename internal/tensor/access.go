package tensor

import (
	"fmt"
	"unsafe"
)

// Typed accessors over the view's elements starting at its offset. Mirrors
// the encoding tag: asking for the wrong type panics, the same way a bad
// reinterpret cast would corrupt data silently.
//
// The returned slices are zero-copy aliases of the storage; for
// non-contiguous views the elements are not adjacent in them, which is why
// kernels demand contiguity before touching memory.

func (t *Tensor) typed(want DataType) unsafe.Pointer {
	if t.dtype != want {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", t.dtype, want))
	}
	return unsafe.Pointer(&t.storage.data[t.offset])
}

// AsFloat32 interprets the data as []float32.
func (t *Tensor) AsFloat32() []float32 {
	return unsafe.Slice((*float32)(t.typed(Float32)), t.NumElements())
}

// AsFloat16 interprets the data as raw IEEE half bits.
func (t *Tensor) AsFloat16() []uint16 {
	return unsafe.Slice((*uint16)(t.typed(Float16)), t.NumElements())
}

// AsBFloat16 interprets the data as raw brain-float bits.
func (t *Tensor) AsBFloat16() []uint16 {
	return unsafe.Slice((*uint16)(t.typed(BFloat16)), t.NumElements())
}

// AsInt8 interprets the data as []int8.
func (t *Tensor) AsInt8() []int8 {
	return unsafe.Slice((*int8)(t.typed(Int8)), t.NumElements())
}

// AsInt16 interprets the data as []int16.
func (t *Tensor) AsInt16() []int16 {
	return unsafe.Slice((*int16)(t.typed(Int16)), t.NumElements())
}

// AsInt32 interprets the data as []int32.
func (t *Tensor) AsInt32() []int32 {
	return unsafe.Slice((*int32)(t.typed(Int32)), t.NumElements())
}

// AsInt64 interprets the data as []int64.
func (t *Tensor) AsInt64() []int64 {
	return unsafe.Slice((*int64)(t.typed(Int64)), t.NumElements())
}

// AsUint8 interprets the data as []uint8.
func (t *Tensor) AsUint8() []uint8 {
	return unsafe.Slice((*uint8)(t.typed(Uint8)), t.NumElements())
}

// AsUint16 interprets the data as []uint16.
func (t *Tensor) AsUint16() []uint16 {
	return unsafe.Slice((*uint16)(t.typed(Uint16)), t.NumElements())
}

// AsUint32 interprets the data as []uint32.
func (t *Tensor) AsUint32() []uint32 {
	return unsafe.Slice((*uint32)(t.typed(Uint32)), t.NumElements())
}

// AsUint64 interprets the data as []uint64.
func (t *Tensor) AsUint64() []uint64 {
	return unsafe.Slice((*uint64)(t.typed(Uint64)), t.NumElements())
}

// AsBool interprets the data as []bool.
func (t *Tensor) AsBool() []bool {
	return unsafe.Slice((*bool)(t.typed(Bool)), t.NumElements())
}

// AsBytes interprets the data as raw octets.
func (t *Tensor) AsBytes() []byte {
	if t.dtype != Byte {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", t.dtype, Byte))
	}
	return t.storage.data[t.offset : t.offset+t.NumElements()]
}
