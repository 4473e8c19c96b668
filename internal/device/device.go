// Package device defines the device-runtime boundary of the weft core.
//
// The core itself only ever computes on host memory. Accelerator devices
// exist as tags plus a Runtime collaborator that owns allocation,
// synchronization and host/device copies; a build that has no accelerator
// runtime simply uses Host, which rejects every device-side call.
package device

import "fmt"

// Device identifies a kind of compute device.
type Device int

// Supported device kinds.
const (
	CPU Device = iota
	CUDA
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// MemcpyKind is the direction of a Runtime.MemcpySync transfer.
type MemcpyKind int

// Transfer directions. Host-to-host copies never reach the Runtime; the
// core performs them directly.
const (
	MemcpyH2D MemcpyKind = iota
	MemcpyD2H
	MemcpyD2D
)

// String returns the conventional short name of the direction.
func (k MemcpyKind) String() string {
	switch k {
	case MemcpyH2D:
		return "H2D"
	case MemcpyD2H:
		return "D2H"
	case MemcpyD2D:
		return "D2D"
	default:
		return "Unknown"
	}
}

// Runtime is the external device-runtime collaborator.
//
// Implementations own device memory: AllocateDeviceStorage returns a buffer
// the returned length of which must equal the request, and MemcpySync blocks
// until the transfer completed or failed. There is no cancellation; a
// transfer either completes or the call errors.
type Runtime interface {
	// AllocateHostStorage allocates pinned or plain host memory of n bytes.
	AllocateHostStorage(n int) ([]byte, error)
	// AllocateDeviceStorage allocates n bytes on the device with the given index.
	AllocateDeviceStorage(dev Device, deviceID int, n int) ([]byte, error)
	// MemcpySync copies n bytes between host and device buffers.
	MemcpySync(dst, src []byte, n int, kind MemcpyKind) error
	// DeviceSynchronize blocks until all queued device work has drained.
	DeviceSynchronize() error
}

// Host is the CPU-only Runtime. It hands out ordinary Go-allocated buffers
// and rejects anything that would touch an accelerator.
type Host struct{}

// NewHost creates the host runtime.
func NewHost() *Host {
	return &Host{}
}

// AllocateHostStorage returns a zeroed host buffer of n bytes.
func (h *Host) AllocateHostStorage(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("device: host allocation of %d bytes", n)
	}
	return make([]byte, n), nil
}

// AllocateDeviceStorage always fails: the host runtime has no accelerator.
func (h *Host) AllocateDeviceStorage(dev Device, deviceID int, n int) ([]byte, error) {
	return nil, fmt.Errorf("device: unsupported device %s:%d (host runtime)", dev, deviceID)
}

// MemcpySync always fails: every direction it can be asked for involves a
// device buffer the host runtime cannot own.
func (h *Host) MemcpySync(dst, src []byte, n int, kind MemcpyKind) error {
	return fmt.Errorf("device: unsupported %s transfer (host runtime)", kind)
}

// DeviceSynchronize is a no-op on the host.
func (h *Host) DeviceSynchronize() error {
	return nil
}
