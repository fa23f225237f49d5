package sysinfo

import (
	"context"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// DiskUsage is the capacity of one mounted filesystem in bytes.
type DiskUsage struct {
	Available uint64
	Total     uint64
}

// MemoryUsage is physical memory in bytes.
type MemoryUsage struct {
	Used  uint64
	Total uint64
}

// Source is a synchronous snapshot of OS counters.
type Source interface {
	Mounts(ctx context.Context) ([]string, error)
	DiskUsage(ctx context.Context, mount string) (DiskUsage, error)
	Memory(ctx context.Context) (MemoryUsage, error)
	CPUPercent(ctx context.Context) (float64, error)
}

// HostSource reads the local machine through gopsutil.
type HostSource struct{}

func NewHostSource() *HostSource {
	return &HostSource{}
}

func (*HostSource) Mounts(ctx context.Context) ([]string, error) {
	parts, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, errors.New().Wrap(ErrMountsFailed, err)
	}

	mounts := make([]string, 0, len(parts))
	for _, p := range parts {
		mounts = append(mounts, p.Mountpoint)
	}

	return mounts, nil
}

func (*HostSource) DiskUsage(ctx context.Context, mount string) (DiskUsage, error) {
	usage, err := disk.UsageWithContext(ctx, mount)
	if err != nil {
		return DiskUsage{}, errors.New().Wrap(ErrDiskUsageFailed, err).WithData(mount)
	}

	// gopsutil reports Free as the space available to unprivileged users.
	return DiskUsage{Available: usage.Free, Total: usage.Total}, nil
}

func (*HostSource) Memory(ctx context.Context) (MemoryUsage, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryUsage{}, errors.New().Wrap(ErrMemoryReadFailed, err)
	}

	return MemoryUsage{Used: vm.Used, Total: vm.Total}, nil
}

// CPUPercent returns utilization across all cores since the previous call.
func (*HostSource) CPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, errors.New().Wrap(ErrCPUReadFailed, err)
	}
	if len(percents) == 0 {
		return 0, errors.New().WithData(ErrCPUReadFailed, "no cpu reading")
	}

	return percents[0], nil
}
