package render_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"codeberg.org/mutker/hoststatus/internal/netclass"
	"codeberg.org/mutker/hoststatus/internal/render"
	"codeberg.org/mutker/hoststatus/internal/sample"
	"codeberg.org/mutker/hoststatus/internal/status"
	"codeberg.org/mutker/hoststatus/internal/sysinfo"
	"codeberg.org/mutker/hoststatus/internal/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var icons = status.Icons{
	Disk:         "disk",
	Memory:       "mem",
	CPU:          "cpu",
	GPU:          "gpu",
	Ethernet:     "eth",
	WiFi:         "wifi",
	Disconnected: "off",
	Volume:       "vol",
	Clock:        "clk",
}

var at = time.Date(2024, 3, 1, 14, 5, 9, 0, time.Local)

type fakeSystem struct {
	samples sysinfo.Samples
	err     error
	panics  bool
}

func (f *fakeSystem) Sample(context.Context) (sysinfo.Samples, error) {
	if f.panics {
		panic("sampler bug")
	}
	return f.samples, f.err
}

type fakeNetwork struct {
	ifaces []netclass.Interface
	err    error
	panics bool
}

func (f *fakeNetwork) Interfaces(context.Context) ([]netclass.Interface, error) {
	if f.panics {
		panic("sysfs bug")
	}
	return f.ifaces, f.err
}

type fakeGPU struct {
	util float64
	err  error
}

func (f *fakeGPU) Utilization() (float64, error) {
	return f.util, f.err
}

// captureSink records lines and cancels after limit lines.
type captureSink struct {
	mu     sync.Mutex
	lines  []string
	limit  int
	cancel context.CancelFunc
	err    error
}

func (s *captureSink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	if s.limit > 0 && len(s.lines) >= s.limit && s.cancel != nil {
		s.cancel()
	}
	return s.err
}

func (*captureSink) Close() error { return nil }

func (s *captureSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func healthySystem() *fakeSystem {
	return &fakeSystem{samples: sysinfo.Samples{
		Disks:  []sample.Sample{{Kind: sample.Disk, Mount: "/", Value: sample.UsedPercent(250, 500), Valid: true}},
		Memory: sample.Of(sample.Memory, sample.Percent(4, 16)),
		CPU:    sample.Of(sample.CPU, 12.3),
	}}
}

func newLoop(sys render.SystemSampler, net netclass.Source, gpu render.GPUReader, vol *volume.State, sink render.Sink, opts ...render.Option) *render.Loop {
	opts = append([]render.Option{render.WithClock(func() time.Time { return at })}, opts...)
	return render.New(render.Deps{
		Mounts:    []string{"/"},
		System:    sys,
		Network:   net,
		GPU:       gpu,
		Volume:    vol,
		Formatter: status.NewFormatter(status.Options{Icons: icons}),
		Sink:      sink,
	}, time.Millisecond, opts...)
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func TestTickEndToEnd(t *testing.T) {
	vol := volume.NewState()
	vol.Set(42, at)
	sink := &captureSink{}
	net := &fakeNetwork{ifaces: []netclass.Interface{{Name: "eth0", Up: true}, {Name: "lo"}}}
	l := newLoop(healthySystem(), net, nil, vol, sink)

	require.NoError(t, l.Tick(context.Background()))

	require.Len(t, sink.Lines(), 1)
	assert.Equal(t, "disk  50.0% | mem  25.0% | cpu  12.3% | eth | vol  42% | clk Fri 01 Mar 02:05:09 PM", sink.Lines()[0])
}

func TestTickWithGPU(t *testing.T) {
	sink := &captureSink{}
	l := newLoop(healthySystem(), &fakeNetwork{}, &fakeGPU{util: 64}, volume.NewState(), sink)

	require.NoError(t, l.Tick(context.Background()))

	assert.Contains(t, sink.Lines()[0], "cpu  12.3% | gpu  64.0% | off | vol   0%")
}

func TestTickIsIdempotent(t *testing.T) {
	sink := &captureSink{}
	l := newLoop(healthySystem(), &fakeNetwork{}, nil, volume.NewState(), sink)

	require.NoError(t, l.Tick(context.Background()))
	require.NoError(t, l.Tick(context.Background()))

	lines := sink.Lines()
	assert.Equal(t, lines[0], lines[1])
}

func TestRunSurvivesFailingProviders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sys := healthySystem()
	net := &fakeNetwork{err: fmt.Errorf("sysfs gone")}
	gpu := &fakeGPU{err: fmt.Errorf("gpu lost")}
	sink := &captureSink{limit: 50, cancel: cancel}
	l := newLoop(sys, net, gpu, volume.NewState(), sink, render.WithSleep(noSleep))

	// Warm up so the disk layout is known, then break every provider.
	require.NoError(t, l.Tick(ctx))
	sys.panics = true
	net.panics = true

	require.NoError(t, l.Run(ctx))

	lines := sink.Lines()
	require.GreaterOrEqual(t, len(lines), 50)
	for _, line := range lines[1:] {
		assert.Equal(t, "disk   0.0% | mem   0.0% | cpu   0.0% | gpu   0.0% | off | vol   0% | clk Fri 01 Mar 02:05:09 PM", line)
	}
}

func TestTickKeepsDiskLayoutBeforeFirstSample(t *testing.T) {
	for name, sys := range map[string]*fakeSystem{
		"panic": {panics: true},
		"error": {err: fmt.Errorf("mount table unreadable")},
	} {
		t.Run(name, func(t *testing.T) {
			sink := &captureSink{}
			l := newLoop(sys, &fakeNetwork{}, nil, volume.NewState(), sink)

			require.NoError(t, l.Tick(context.Background()))

			sys.panics = false
			sys.err = nil
			sys.samples = healthySystem().samples
			require.NoError(t, l.Tick(context.Background()))

			lines := sink.Lines()
			require.Len(t, lines, 2)
			assert.Equal(t, "disk   0.0% | mem   0.0% | cpu   0.0% | off | vol   0% | clk Fri 01 Mar 02:05:09 PM", lines[0])
			assert.Equal(t, "disk  50.0% | mem  25.0% | cpu  12.3% | off | vol   0% | clk Fri 01 Mar 02:05:09 PM", lines[1])
		})
	}
}

func TestRunKeepsGoingOnSinkErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &captureSink{limit: 5, cancel: cancel, err: fmt.Errorf("broken pipe")}
	l := newLoop(healthySystem(), &fakeNetwork{}, nil, volume.NewState(), sink, render.WithSleep(noSleep))

	require.NoError(t, l.Run(ctx))
	assert.GreaterOrEqual(t, len(sink.Lines()), 5)
}

func TestRunObservesVolumeUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vol := volume.NewState()
	sink := &captureSink{}
	l := newLoop(healthySystem(), &fakeNetwork{}, nil, vol, sink)

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	vol.Set(77, time.Now())
	require.Eventually(t, func() bool {
		lines := sink.Lines()
		return len(lines) > 0 && strings.Contains(lines[len(lines)-1], "vol  77%")
	}, time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestRunStopsOnStrictMissingMount(t *testing.T) {
	sys := &fakeSystem{err: errors.New().WithData(sysinfo.ErrMountMissing, "/mnt/backup")}
	sink := &captureSink{}
	l := newLoop(sys, &fakeNetwork{}, nil, volume.NewState(), sink)

	err := l.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, sysinfo.ErrMountMissing))
	assert.Empty(t, sink.Lines())
}

func TestWriterSink(t *testing.T) {
	var b strings.Builder
	s := render.NewWriterSink(&b)

	require.NoError(t, s.Write("a | b"))
	require.NoError(t, s.Write("c"))
	require.NoError(t, s.Close())

	assert.Equal(t, "a | b\nc\n", b.String())
}
