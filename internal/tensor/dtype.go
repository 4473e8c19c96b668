// Package tensor provides the strided tensor core of weft: reference-counted
// storage, shape/stride views over it, and the element-encoding utilities the
// compute kernels are built on.
package tensor

// DataType represents runtime type information for tensors.
//
// The tag set is wire-visible: Float16 is IEEE half layout, BFloat16 is the
// truncated-mantissa brain-float layout, Byte is an opaque octet.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float16
	BFloat16
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Bool
	Byte
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32, Uint32:
		return 4
	case Float16, BFloat16, Int16, Uint16:
		return 2
	case Int64, Uint64:
		return 8
	case Int8, Uint8, Bool, Byte:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Bool:
		return "bool"
	case Byte:
		return "byte"
	default:
		return "unknown"
	}
}

// IsFloat returns true for the floating-point encodings.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float16 || dt == BFloat16
}
