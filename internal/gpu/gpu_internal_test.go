package gpu

import (
	"testing"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	util nvml.Utilization
	ret  nvml.Return
}

func (*fakeDevice) GetName() (string, nvml.Return) {
	return "Fake RTX", nvml.SUCCESS
}

func (d *fakeDevice) GetUtilizationRates() (nvml.Utilization, nvml.Return) {
	return d.util, d.ret
}

type fakeLib struct {
	shutdowns int
}

func (*fakeLib) Initialize() error                  { return nil }
func (l *fakeLib) Shutdown() error                  { l.shutdowns++; return nil }
func (*fakeLib) GetDeviceCount() (int, error)       { return 1, nil }
func (*fakeLib) GetDevice(int) (nvml.Device, error) { return nil, nil }

func TestUtilization(t *testing.T) {
	m := newMonitor(&fakeLib{}, &fakeDevice{util: nvml.Utilization{Gpu: 37, Memory: 10}, ret: nvml.SUCCESS})

	got, err := m.Utilization()
	require.NoError(t, err)
	assert.InDelta(t, 37.0, got, 1e-9)
	assert.Equal(t, "Fake RTX", m.Name())
}

func TestUtilizationFailure(t *testing.T) {
	m := newMonitor(&fakeLib{}, &fakeDevice{ret: nvml.ERROR_GPU_IS_LOST})

	_, err := m.Utilization()
	assert.True(t, errors.HasCode(err, ErrUtilizationFailed))
}

func TestShutdown(t *testing.T) {
	lib := &fakeLib{}
	m := newMonitor(lib, &fakeDevice{ret: nvml.SUCCESS})

	require.NoError(t, m.Shutdown())
	assert.Equal(t, 1, lib.shutdowns)
}
