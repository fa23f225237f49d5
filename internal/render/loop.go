// Package render drives the fixed-rate status loop.
package render

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"codeberg.org/mutker/hoststatus/internal/logger"
	"codeberg.org/mutker/hoststatus/internal/netclass"
	"codeberg.org/mutker/hoststatus/internal/sample"
	"codeberg.org/mutker/hoststatus/internal/status"
	"codeberg.org/mutker/hoststatus/internal/sysinfo"
	"codeberg.org/mutker/hoststatus/internal/volume"
)

const ErrProviderPanic = errors.ErrorCode("render_provider_panic")

// SystemSampler produces the disk, memory and CPU samples of a tick.
type SystemSampler interface {
	Sample(ctx context.Context) (sysinfo.Samples, error)
}

type GPUReader interface {
	Utilization() (float64, error)
}

// VolumeReader is the read side of the shared volume cell.
type VolumeReader interface {
	Get() volume.Reading
}

// Deps are the loop's collaborators. GPU may be nil. Mounts fixes the disk
// segments rendered before the first successful system sample.
type Deps struct {
	Mounts    []string
	System    SystemSampler
	Network   netclass.Source
	GPU       GPUReader
	Volume    VolumeReader
	Formatter *status.Formatter
	Sink      Sink
}

type Option func(*Loop)

// WithClock replaces time.Now for scheduling and the clock field.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// WithSleep replaces the context-aware sleep between ticks.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Loop) { l.sleep = sleep }
}

type Loop struct {
	deps     Deps
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	lastDiagnostic string
	sinkFailing    bool
	// disks is the disk layout a failed tick falls back to: the configured mounts,
	// then the mounts of the last good system sample.
	disks []sample.Sample
}

func New(deps Deps, interval time.Duration, opts ...Option) *Loop {
	l := &Loop{
		deps:     deps,
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
		disks:    make([]sample.Sample, len(deps.Mounts)),
	}
	for i, m := range deps.Mounts {
		l.disks[i] = sample.Sample{Kind: sample.Disk, Mount: m}
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run ticks until ctx is done or a tick fails fatally. Cancellation is only observed
// between ticks.
func (l *Loop) Run(ctx context.Context) error {
	sched := NewSchedule(l.now(), l.interval)

	for {
		if err := l.Tick(ctx); err != nil {
			return err
		}

		if err := l.sleep(ctx, sched.Next(l.now())); err != nil {
			return nil
		}
	}
}

// Tick samples, formats and emits one line. It only fails when the system sampler
// reports a fatal condition.
func (l *Loop) Tick(ctx context.Context) error {
	sys, err := l.sampleSystem(ctx)
	if err != nil {
		if errors.HasCode(err, sysinfo.ErrMountMissing) {
			return err
		}
		logger.Debug().Err(err).Msg("System sampling failed, rendering fallbacks")
	}

	link := l.classifyNetwork(ctx)
	vol := l.deps.Volume.Get().Percent

	line := l.deps.Formatter.Format(status.Values{
		Disks:  sys.Disks,
		Memory: sys.Memory,
		CPU:    sys.CPU,
		GPU:    l.sampleGPU(),
		Link:   link,
		Volume: vol,
		Time:   l.now(),
	})

	l.emit(line.String())

	return nil
}

func (l *Loop) sampleSystem(ctx context.Context) (samples sysinfo.Samples, err error) {
	samples = sysinfo.Samples{
		Disks:  make([]sample.Sample, len(l.disks)),
		Memory: sample.Invalid(sample.Memory),
		CPU:    sample.Invalid(sample.CPU),
	}
	for i, d := range l.disks {
		samples.Disks[i] = sample.Sample{Kind: sample.Disk, Mount: d.Mount}
	}

	err = guard(func() error {
		s, err := l.deps.System.Sample(ctx)
		if err == nil {
			samples = s
			l.disks = s.Disks
		}
		return err
	})

	return samples, err
}

func (l *Loop) classifyNetwork(ctx context.Context) netclass.Link {
	var ifaces []netclass.Interface
	err := guard(func() error {
		var err error
		ifaces, err = l.deps.Network.Interfaces(ctx)
		return err
	})
	if err != nil {
		logger.Debug().Err(err).Msg("Network interfaces unavailable")
		ifaces = nil
	}

	res := netclass.Classify(ifaces)
	if res.Diagnostic != l.lastDiagnostic {
		logger.Debug().Str("link", res.Link.String()).Msg(res.Diagnostic)
		l.lastDiagnostic = res.Diagnostic
	}

	return res.Link
}

func (l *Loop) sampleGPU() *sample.Sample {
	if l.deps.GPU == nil {
		return nil
	}

	s := sample.Invalid(sample.GPU)
	err := guard(func() error {
		util, err := l.deps.GPU.Utilization()
		if err == nil {
			s = sample.Of(sample.GPU, util)
		}
		return err
	})
	if err != nil {
		logger.Debug().Err(err).Msg("GPU utilization unavailable")
	}

	return &s
}

func (l *Loop) emit(line string) {
	if err := l.deps.Sink.Write(line); err != nil {
		if !l.sinkFailing {
			logger.Warn().Err(err).Msg("Failed to write status line")
			l.sinkFailing = true
		}
		return
	}
	l.sinkFailing = false
}

// guard turns a panic in fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New().WithData(ErrProviderPanic, fmt.Sprint(r))
		}
	}()

	return fn()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
