package netclass

import (
	"context"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"github.com/prometheus/procfs/sysfs"
	"github.com/shirou/gopsutil/v4/net"
)

const (
	ErrSysfsInit      = errors.ErrorCode("netclass_sysfs_init_failed")
	ErrNetClassFailed = errors.ErrorCode("netclass_read_failed")
)

// Source lists the current network interfaces.
type Source interface {
	Interfaces(ctx context.Context) ([]Interface, error)
}

// SysfsSource reads operstate from /sys/class/net and byte counters from gopsutil.
type SysfsSource struct {
	fs sysfs.FS
}

func NewSysfsSource(mountPoint string) (*SysfsSource, error) {
	fs, err := sysfs.NewFS(mountPoint)
	if err != nil {
		return nil, errors.New().Wrap(ErrSysfsInit, err).WithData(mountPoint)
	}

	return &SysfsSource{fs: fs}, nil
}

func (s *SysfsSource) Interfaces(ctx context.Context) ([]Interface, error) {
	class, err := s.fs.NetClass()
	if err != nil {
		return nil, errors.New().Wrap(ErrNetClassFailed, err)
	}

	counters := make(map[string]net.IOCountersStat)
	// Missing counters only affect the diagnostic text.
	if stats, err := net.IOCountersWithContext(ctx, true); err == nil {
		for _, st := range stats {
			counters[st.Name] = st
		}
	}

	ifaces := make([]Interface, 0, len(class))
	for name, iface := range class {
		c := counters[name]
		ifaces = append(ifaces, Interface{
			Name:             name,
			ReceivedBytes:    c.BytesRecv,
			TransmittedBytes: c.BytesSent,
			Up:               IsUp(iface.OperState),
		})
	}

	return ifaces, nil
}
