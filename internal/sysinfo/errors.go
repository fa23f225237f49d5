package sysinfo

import "codeberg.org/mutker/hoststatus/internal/errors"

const (
	ErrMountMissing     = errors.ErrorCode("sysinfo_mount_missing")
	ErrMountsFailed     = errors.ErrorCode("sysinfo_mounts_failed")
	ErrDiskUsageFailed  = errors.ErrorCode("sysinfo_disk_usage_failed")
	ErrMemoryReadFailed = errors.ErrorCode("sysinfo_memory_read_failed")
	ErrCPUReadFailed    = errors.ErrorCode("sysinfo_cpu_read_failed")
)
