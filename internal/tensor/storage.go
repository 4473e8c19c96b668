package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/weft-ml/weft/internal/device"
)

// Storage is a reference-counted raw memory block tagged with the device it
// lives on. Every view that references it holds a strong reference; the
// buffer is released when the last view releases it. Size and device never
// change after allocation, only the byte contents do.
//
// Storage provides no protection against concurrent writers: callers must
// serialize writes to overlapping views themselves.
type Storage struct {
	data     []byte
	dev      device.Device
	deviceID int
	refs     atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newStorage allocates storage of n bytes on the given device through the
// active runtime. The returned storage has one reference.
func newStorage(n int, dev device.Device, deviceID int) (*Storage, error) {
	var buf []byte
	var err error
	if dev == device.CPU {
		buf, err = activeRuntime().AllocateHostStorage(n)
	} else {
		buf, err = activeRuntime().AllocateDeviceStorage(dev, deviceID, n)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: allocation of %d bytes on %s:%d failed: %w", n, dev, deviceID, err)
	}

	s := &Storage{
		data:     buf,
		dev:      dev,
		deviceID: deviceID,
	}
	s.refs.Store(1)
	return s, nil
}

// Size returns the byte size of the storage.
func (s *Storage) Size() int {
	return len(s.data)
}

// Device returns the device kind the storage lives on.
func (s *Storage) Device() device.Device {
	return s.dev
}

// DeviceID returns the device index the storage lives on.
func (s *Storage) DeviceID() int {
	return s.deviceID
}

// retain increments the reference count (a new view shares the storage).
func (s *Storage) retain() {
	s.refs.Add(1)
}

// release decrements the reference count and drops the buffer when it
// reaches zero. Releasing more times than retained is a bug in the caller.
func (s *Storage) release() {
	n := s.refs.Add(-1)
	if n < 0 {
		panic("tensor: storage released more times than retained")
	}
	if n == 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.data = nil
	}
}
