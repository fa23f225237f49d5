// Package gpu reads GPU utilization through NVML for the optional status field.
package gpu

import (
	"codeberg.org/mutker/hoststatus/internal/errors"
	"codeberg.org/mutker/hoststatus/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// device is the subset of nvml.Device the monitor reads.
type device interface {
	GetName() (string, nvml.Return)
	GetUtilizationRates() (nvml.Utilization, nvml.Return)
}

type Monitor struct {
	lib    nvmlController
	device device
	name   string
}

// New initializes NVML and opens the first device. Any failure means the host has no
// usable GPU and the field is left out of the status line.
func New() (*Monitor, error) {
	lib := &nvmlWrapper{}
	if err := lib.Initialize(); err != nil {
		return nil, err
	}

	count, err := lib.GetDeviceCount()
	if err != nil {
		_ = lib.Shutdown()
		return nil, err
	}
	if count == 0 {
		_ = lib.Shutdown()
		return nil, errors.New().WithData(ErrDeviceNotFound, "no NVML devices")
	}

	dev, err := lib.GetDevice(0)
	if err != nil {
		_ = lib.Shutdown()
		return nil, err
	}

	return newMonitor(lib, dev), nil
}

func newMonitor(lib nvmlController, dev device) *Monitor {
	m := &Monitor{lib: lib, device: dev}

	if name, ret := dev.GetName(); IsNVMLSuccess(ret) {
		m.name = name
		logger.Info().Msgf("Detected GPU: %v", name)
	} else {
		logger.Warn().Msg("Failed to get GPU name")
	}

	return m
}

func (m *Monitor) Name() string {
	return m.name
}

// Utilization returns the percentage of time the GPU was busy over the last sample period.
func (m *Monitor) Utilization() (float64, error) {
	util, ret := m.device.GetUtilizationRates()
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrUtilizationFailed, newNVMLError(ret))
	}

	return float64(util.Gpu), nil
}

func (m *Monitor) Shutdown() error {
	if m.lib == nil {
		return nil
	}

	return m.lib.Shutdown()
}
