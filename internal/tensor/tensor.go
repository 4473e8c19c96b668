package tensor

import (
	"fmt"
	"math"
	"strings"
	"unsafe"

	"github.com/weft-ml/weft/internal/device"
)

// Tensor is a strided view over shared Storage: an element encoding, a shape,
// per-dimension strides in elements, and a byte offset into the storage.
//
// Layout transforms (Permute, View, Slice) produce new views sharing the same
// storage without copying bytes; only Contiguous and To may materialize a
// copy. The byte range reachable through a view is checked against the
// storage size when the view is constructed, never on element access.
type Tensor struct {
	storage *Storage
	shape   Shape
	strides []int // in elements, not bytes
	dtype   DataType
	offset  int // in bytes
}

// New allocates a tensor of the given shape and element encoding on a device.
// Strides are row-major; the contents are zeroed.
func New(shape Shape, dtype DataType, dev device.Device, deviceID int) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("tensor: invalid shape: %w", err)
	}

	elemSize := dtype.Size()
	n := shape.NumElements()
	if n > math.MaxInt/elemSize {
		return nil, fmt.Errorf("tensor: shape %v with dtype %s overflows addressable size", shape, dtype)
	}

	storage, err := newStorage(n*elemSize, dev, deviceID)
	if err != nil {
		return nil, err
	}

	return &Tensor{
		storage: storage,
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		dtype:   dtype,
		offset:  0,
	}, nil
}

// newView builds a view over existing storage after checking that every
// element the view can reach lies inside the storage. The storage reference
// count is bumped on success.
func newView(storage *Storage, shape Shape, strides []int, dtype DataType, offset int) (*Tensor, error) {
	if len(shape) != len(strides) {
		return nil, fmt.Errorf("tensor: shape rank %d does not match strides rank %d", len(shape), len(strides))
	}

	if shape.NumElements() > 0 {
		// Min and max element offsets reachable through the strides.
		minElem, maxElem := 0, 0
		for d := range shape {
			span := (shape[d] - 1) * strides[d]
			if span >= 0 {
				maxElem += span
			} else {
				minElem += span
			}
		}
		elemSize := dtype.Size()
		if offset+minElem*elemSize < 0 || offset+(maxElem+1)*elemSize > storage.Size() {
			return nil, fmt.Errorf("tensor: view shape %v strides %v offset %d exceeds storage of %d bytes",
				shape, strides, offset, storage.Size())
		}
	}

	storage.retain()
	return &Tensor{
		storage: storage,
		shape:   shape.Clone(),
		strides: append([]int(nil), strides...),
		dtype:   dtype,
		offset:  offset,
	}, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's per-dimension strides, in elements.
func (t *Tensor) Strides() []int {
	return t.strides
}

// DType returns the tensor's element encoding.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// Device returns the device kind the backing storage lives on.
func (t *Tensor) Device() device.Device {
	return t.storage.Device()
}

// DeviceID returns the device index the backing storage lives on.
func (t *Tensor) DeviceID() int {
	return t.storage.DeviceID()
}

// Storage returns the backing storage shared by this view.
func (t *Tensor) Storage() *Storage {
	return t.storage
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// ElementSize returns the byte size of one element.
func (t *Tensor) ElementSize() int {
	return t.dtype.Size()
}

// ByteSize returns numel * elementSize, the logical byte size of the view.
func (t *Tensor) ByteSize() int {
	return t.NumElements() * t.dtype.Size()
}

// Alias returns a new view of the same shape, strides and offset, sharing
// the storage via reference counting.
func (t *Tensor) Alias() *Tensor {
	t.storage.retain()
	return &Tensor{
		storage: t.storage,
		shape:   t.shape.Clone(),
		strides: append([]int(nil), t.strides...),
		dtype:   t.dtype,
		offset:  t.offset,
	}
}

// Release drops this view's reference to the storage. The buffer is freed
// when the last view releases it.
func (t *Tensor) Release() {
	t.storage.release()
}

// IsContiguous reports whether the strides match the canonical row-major
// layout for the shape. This is re-derived on every call: Permute and Slice
// mutate strides without copying data, so a cached flag would go stale.
func (t *Tensor) IsContiguous() bool {
	expected := 1
	for i := len(t.shape) - 1; i >= 0; i-- {
		if t.strides[i] != expected {
			return false
		}
		expected *= t.shape[i]
	}
	return true
}

// Permute returns a view with shape and strides reindexed by order, which
// must be a permutation of [0, ndim). No data moves.
func (t *Tensor) Permute(order []int) (*Tensor, error) {
	ndim := len(t.shape)
	if len(order) != ndim {
		return nil, fmt.Errorf("tensor: permute order has %d indices, want %d", len(order), ndim)
	}

	newShape := make(Shape, ndim)
	newStrides := make([]int, ndim)
	seen := make([]bool, ndim)
	for i, o := range order {
		if o < 0 || o >= ndim {
			return nil, fmt.Errorf("tensor: permute index %d out of range [0, %d)", o, ndim)
		}
		if seen[o] {
			return nil, fmt.Errorf("tensor: permute order %v repeats index %d", order, o)
		}
		seen[o] = true
		newShape[i] = t.shape[o]
		newStrides[i] = t.strides[o]
	}

	return newView(t.storage, newShape, newStrides, t.dtype, t.offset)
}

// View returns a view of the same elements with a new shape. The source must
// be contiguous and the element counts must match; a non-contiguous source
// must be materialized with Contiguous first, View never copies.
func (t *Tensor) View(newShape Shape) (*Tensor, error) {
	if err := newShape.Validate(); err != nil {
		return nil, fmt.Errorf("tensor: view: invalid shape: %w", err)
	}
	if newShape.NumElements() != t.NumElements() {
		return nil, fmt.Errorf("tensor: view shape %v has %d elements, source has %d",
			newShape, newShape.NumElements(), t.NumElements())
	}
	if !t.IsContiguous() {
		return nil, fmt.Errorf("tensor: view of non-contiguous tensor (shape %v strides %v); call Contiguous first",
			t.shape, t.strides)
	}

	return newView(t.storage, newShape, newShape.ComputeStrides(), t.dtype, t.offset)
}

// Reshape is an alias for View.
func (t *Tensor) Reshape(newShape Shape) (*Tensor, error) {
	return t.View(newShape)
}

// Slice returns a view restricted to [start, end) along dim. Strides are
// unchanged; the byte offset advances by start elements along dim.
func (t *Tensor) Slice(dim, start, end int) (*Tensor, error) {
	if dim < 0 || dim >= len(t.shape) {
		return nil, fmt.Errorf("tensor: slice dim %d out of range for shape %v", dim, t.shape)
	}
	if start < 0 || start > end || end > t.shape[dim] {
		return nil, fmt.Errorf("tensor: slice bounds [%d, %d) invalid for dimension of size %d",
			start, end, t.shape[dim])
	}

	newShape := t.shape.Clone()
	newShape[dim] = end - start
	offset := t.offset + start*t.strides[dim]*t.ElementSize()

	return newView(t.storage, newShape, t.strides, t.dtype, offset)
}

// Contiguous returns a view with canonical row-major layout. If the tensor is
// already contiguous this is a cheap alias sharing the storage; otherwise
// every element is copied from its strided source position into freshly
// allocated storage.
func (t *Tensor) Contiguous() (*Tensor, error) {
	if t.IsContiguous() {
		return newView(t.storage, t.shape, t.strides, t.dtype, t.offset)
	}
	if t.Device() != device.CPU {
		return nil, fmt.Errorf("tensor: contiguous on %s device not supported", t.Device())
	}

	out, err := New(t.shape, t.dtype, t.Device(), t.DeviceID())
	if err != nil {
		return nil, err
	}

	elemSize := t.ElementSize()
	src := t.storage.data
	dst := out.storage.data
	n := t.NumElements()
	for i := 0; i < n; i++ {
		srcOff := t.offset + t.elementOffset(i)*elemSize
		copy(dst[i*elemSize:(i+1)*elemSize], src[srcOff:srcOff+elemSize])
	}
	return out, nil
}

// elementOffset maps a linear (row-major) element index to the physical
// element offset through the view's strides.
func (t *Tensor) elementOffset(i int) int {
	off := 0
	for d := len(t.shape) - 1; d >= 0; d-- {
		off += (i % t.shape[d]) * t.strides[d]
		i /= t.shape[d]
	}
	return off
}

// To returns this tensor on the target device: a cheap alias when it already
// lives there, otherwise a full-buffer copy into freshly allocated storage.
// Any path touching an accelerator delegates to the device runtime.
func (t *Tensor) To(dev device.Device, deviceID int) (*Tensor, error) {
	if dev == t.Device() && (deviceID < 0 || deviceID == t.DeviceID()) {
		return newView(t.storage, t.shape, t.strides, t.dtype, t.offset)
	}

	out, err := New(t.shape, t.dtype, dev, deviceID)
	if err != nil {
		return nil, err
	}

	n := t.ByteSize()
	switch {
	case t.Device() == device.CPU && dev == device.CPU:
		copy(out.storage.data, t.storage.data[t.offset:t.offset+n])
	case t.Device() == device.CPU:
		err = activeRuntime().MemcpySync(out.storage.data, t.storage.data[t.offset:], n, device.MemcpyH2D)
	case dev == device.CPU:
		err = activeRuntime().MemcpySync(out.storage.data, t.storage.data[t.offset:], n, device.MemcpyD2H)
	default:
		err = activeRuntime().MemcpySync(out.storage.data, t.storage.data[t.offset:], n, device.MemcpyD2D)
	}
	if err != nil {
		out.Release()
		return nil, fmt.Errorf("tensor: transfer to %s:%d failed: %w", dev, deviceID, err)
	}
	return out, nil
}

// Load bulk-overwrites the tensor's backing bytes from src, which must hold
// exactly numel * elementSize bytes. Host tensors copy directly; device
// tensors delegate the transfer to the runtime.
func (t *Tensor) Load(src []byte) error {
	want := t.ByteSize()
	if len(src) != want {
		return fmt.Errorf("tensor: load of %d bytes into tensor of %d bytes", len(src), want)
	}

	if t.Device() == device.CPU {
		copy(t.storage.data[t.offset:t.offset+want], src)
		return nil
	}
	if err := activeRuntime().MemcpySync(t.storage.data[t.offset:], src, want, device.MemcpyH2D); err != nil {
		return fmt.Errorf("tensor: load transfer failed: %w", err)
	}
	return nil
}

// Data returns the raw bytes starting at the view's offset.
//
// WARNING: direct access to underlying memory; for non-contiguous views the
// elements are not adjacent within the returned slice.
func (t *Tensor) Data() []byte {
	return t.storage.data[t.offset:]
}

// String returns a one-line description of the view.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v strides %v on %s:%d",
		t.dtype, t.shape, t.strides, t.Device(), t.DeviceID())
}

// Debug returns the info line plus the full contents, walking the strides so
// permuted and sliced views print in logical order. Accelerator tensors are
// synchronized and copied back through the runtime first.
func (t *Tensor) Debug() (string, error) {
	var sb strings.Builder
	sb.WriteString(t.String())
	sb.WriteByte('\n')

	host := t
	if t.Device() != device.CPU {
		if err := activeRuntime().DeviceSynchronize(); err != nil {
			return "", fmt.Errorf("tensor: debug synchronize failed: %w", err)
		}
		var err error
		host, err = t.To(device.CPU, 0)
		if err != nil {
			return "", err
		}
		defer host.Release()
	}

	host.printDim(&sb, 0, 0)
	return sb.String(), nil
}

func (t *Tensor) printDim(sb *strings.Builder, dim, elemOff int) {
	if len(t.shape) == 0 {
		fmt.Fprintf(sb, "%v\n", t.format(elemOff))
		return
	}
	if dim == len(t.shape)-1 {
		for i := 0; i < t.shape[dim]; i++ {
			fmt.Fprintf(sb, "%v ", t.format(elemOff+i*t.strides[dim]))
		}
		sb.WriteByte('\n')
		return
	}
	for i := 0; i < t.shape[dim]; i++ {
		t.printDim(sb, dim+1, elemOff+i*t.strides[dim])
	}
}

// format renders the element at the given physical element offset.
func (t *Tensor) format(elemOff int) any {
	base := t.offset + elemOff*t.ElementSize()
	p := unsafe.Pointer(&t.storage.data[base])
	switch t.dtype {
	case Float32:
		return *(*float32)(p)
	case Float16:
		return Float16ToFloat32(*(*uint16)(p))
	case BFloat16:
		return BFloat16ToFloat32(*(*uint16)(p))
	case Int8:
		return *(*int8)(p)
	case Int16:
		return *(*int16)(p)
	case Int32:
		return *(*int32)(p)
	case Int64:
		return *(*int64)(p)
	case Uint8, Byte:
		return t.storage.data[base]
	case Uint16:
		return *(*uint16)(p)
	case Uint32:
		return *(*uint32)(p)
	case Uint64:
		return *(*uint64)(p)
	case Bool:
		return *(*bool)(p)
	default:
		return "?"
	}
}
