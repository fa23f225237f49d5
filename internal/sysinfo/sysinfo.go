// Package sysinfo derives disk, memory and CPU samples from a fresh OS snapshot each tick.
package sysinfo

import (
	"context"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"codeberg.org/mutker/hoststatus/internal/logger"
	"codeberg.org/mutker/hoststatus/internal/sample"
)

// Samples is one tick's system readings. Disks follows the configured mount order.
type Samples struct {
	Disks  []sample.Sample
	Memory sample.Sample
	CPU    sample.Sample
}

type Sampler struct {
	src    Source
	mounts []string
	strict bool
	warned map[string]bool
}

// NewSampler samples the given mount points. With strict set, a mount point absent
// from the OS snapshot makes Sample fail with ErrMountMissing.
func NewSampler(src Source, mounts []string, strict bool) *Sampler {
	return &Sampler{
		src:    src,
		mounts: append([]string(nil), mounts...),
		strict: strict,
		warned: make(map[string]bool),
	}
}

// Sample refreshes every reading. Only the strict missing-mount case returns an error;
// any other failure yields an invalid sample for that metric.
func (s *Sampler) Sample(ctx context.Context) (Samples, error) {
	disks, err := s.sampleDisks(ctx)
	if err != nil {
		return Samples{}, err
	}

	return Samples{
		Disks:  disks,
		Memory: s.sampleMemory(ctx),
		CPU:    s.sampleCPU(ctx),
	}, nil
}

func (s *Sampler) sampleDisks(ctx context.Context) ([]sample.Sample, error) {
	disks := make([]sample.Sample, len(s.mounts))
	for i, m := range s.mounts {
		disks[i] = sample.Sample{Kind: sample.Disk, Mount: m}
	}

	present, err := s.src.Mounts(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Mount table unavailable")
		return disks, nil
	}

	mounted := make(map[string]bool, len(present))
	for _, m := range present {
		mounted[m] = true
	}

	for i, m := range s.mounts {
		if !mounted[m] {
			if s.strict {
				return nil, errors.New().WithData(ErrMountMissing, m)
			}
			if !s.warned[m] {
				logger.Warn().Str("mount", m).Msg("Configured mount point not found, rendering fallback")
				s.warned[m] = true
			}
			continue
		}
		delete(s.warned, m)

		usage, err := s.src.DiskUsage(ctx, m)
		if err != nil {
			logger.Debug().Err(err).Str("mount", m).Msg("Disk usage unavailable")
			continue
		}

		disks[i].Value = sample.UsedPercent(usage.Available, usage.Total)
		disks[i].Valid = true
	}

	return disks, nil
}

func (s *Sampler) sampleMemory(ctx context.Context) sample.Sample {
	usage, err := s.src.Memory(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Memory usage unavailable")
		return sample.Invalid(sample.Memory)
	}

	return sample.Of(sample.Memory, sample.Percent(usage.Used, usage.Total))
}

func (s *Sampler) sampleCPU(ctx context.Context) sample.Sample {
	percent, err := s.src.CPUPercent(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("CPU usage unavailable")
		return sample.Invalid(sample.CPU)
	}

	return sample.Of(sample.CPU, percent)
}
