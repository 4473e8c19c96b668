package tensor

import (
	"sync"

	"github.com/weft-ml/weft/internal/device"
)

// The process-wide device runtime. Allocation and host/device transfer for
// accelerator-resident tensors go through it; the default host runtime
// rejects every accelerator path.

var (
	runtimeMu sync.RWMutex
	rt        device.Runtime = device.NewHost()
)

// SetRuntime installs a device runtime. Intended to be called once at
// startup, before any tensor is created on an accelerator device.
func SetRuntime(r device.Runtime) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	rt = r
}

func activeRuntime() device.Runtime {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	return rt
}
