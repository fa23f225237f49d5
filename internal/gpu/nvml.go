package gpu

import (
	"codeberg.org/mutker/hoststatus/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlController abstracts NVML library lifecycle operations
type nvmlController interface {
	Initialize() error
	Shutdown() error
	GetDeviceCount() (int, error)
	GetDevice(index int) (nvml.Device, error)
}

type nvmlWrapper struct {
	initialized bool
}

func (w *nvmlWrapper) Initialize() error {
	if w.initialized {
		return nil
	}

	ret := nvml.Init()
	if !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrInitFailed, newNVMLError(ret))
	}

	w.initialized = true

	return nil
}

func (w *nvmlWrapper) Shutdown() error {
	if !w.initialized {
		return nil
	}

	ret := nvml.Shutdown()
	if !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrShutdownFailed, newNVMLError(ret))
	}

	w.initialized = false

	return nil
}

func (w *nvmlWrapper) GetDeviceCount() (int, error) {
	if !w.initialized {
		return 0, errors.New().New(ErrNotInitialized)
	}

	count, ret := nvml.DeviceGetCount()
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrDeviceCountFailed, newNVMLError(ret))
	}

	return count, nil
}

func (w *nvmlWrapper) GetDevice(index int) (nvml.Device, error) {
	if !w.initialized {
		return nil, errors.New().New(ErrNotInitialized)
	}

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if !IsNVMLSuccess(ret) {
		return nil, errors.New().Wrap(ErrDeviceNotFound, newNVMLError(ret))
	}

	return device, nil
}
