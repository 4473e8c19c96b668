package cpu

import (
	"fmt"

	"github.com/weft-ml/weft/internal/device"
	"github.com/weft-ml/weft/internal/tensor"
)

// Shared validation contract. Checks run in a fixed order before any kernel
// touches memory: device match, host device, contiguity, shape rules, dtype
// equality. Errors name the operation and operand so a failure can be
// diagnosed without re-running.

// operand pairs a tensor with the name it has in the kernel signature.
type operand struct {
	name string
	t    *tensor.Tensor
}

func checkSameDevice(op string, operands []operand) error {
	first := operands[0]
	for _, o := range operands[1:] {
		if o.t.Device() != first.t.Device() || o.t.DeviceID() != first.t.DeviceID() {
			return fmt.Errorf("%s: operand %s on %s:%d, but %s on %s:%d",
				op, o.name, o.t.Device(), o.t.DeviceID(),
				first.name, first.t.Device(), first.t.DeviceID())
		}
	}
	return nil
}

func checkHost(op string, t *tensor.Tensor) error {
	if t.Device() != device.CPU {
		return fmt.Errorf("%s: unsupported device %s (host only)", op, t.Device())
	}
	return nil
}

func checkContiguous(op string, operands []operand) error {
	for _, o := range operands {
		if !o.t.IsContiguous() {
			return fmt.Errorf("%s: operand %s is not contiguous (shape %v strides %v); materialize with Contiguous first",
				op, o.name, o.t.Shape(), o.t.Strides())
		}
	}
	return nil
}

func checkRank(op, name string, t *tensor.Tensor, want int) error {
	if len(t.Shape()) != want {
		return fmt.Errorf("%s: operand %s must be %d-D, got shape %v", op, name, want, t.Shape())
	}
	return nil
}

func checkSameDType(op string, ref operand, operands ...operand) error {
	for _, o := range operands {
		if o.t.DType() != ref.t.DType() {
			return fmt.Errorf("%s: operand %s has dtype %s, but %s has dtype %s",
				op, o.name, o.t.DType(), ref.name, ref.t.DType())
		}
	}
	return nil
}

func checkDType(op, name string, t *tensor.Tensor, want tensor.DataType) error {
	if t.DType() != want {
		return fmt.Errorf("%s: operand %s must be %s, got %s", op, name, want, t.DType())
	}
	return nil
}

func errUnsupportedDType(op string, dt tensor.DataType) error {
	return fmt.Errorf("%s: unsupported dtype %s", op, dt)
}
