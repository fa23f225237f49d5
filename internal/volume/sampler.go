// Package volume keeps the output volume reading fresh on its own schedule.
package volume

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"codeberg.org/mutker/hoststatus/internal/logger"
)

const (
	DefaultInterval    = 500 * time.Millisecond
	defaultErrorBuffer = 16
)

// Conn is a live connection to the audio server.
type Conn interface {
	// Volume returns the default output device's volume as 0-100.
	Volume(ctx context.Context) (uint8, error)
	Close() error
}

// Dialer opens connections to the audio server.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// ConnState is the sampler's view of its audio server connection.
type ConnState int32

const (
	Disconnected ConnState = iota
	Connecting
	Ready
	Failed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type Option func(*Sampler)

// WithClock replaces time.Now for commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

// WithQueryTimeout bounds a single connect or query. Defaults to the interval.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Sampler) { s.timeout = d }
}

// WithErrorBuffer sets the capacity of the Errors channel.
func WithErrorBuffer(n int) Option {
	return func(s *Sampler) { s.errs = make(chan error, n) }
}

// Sampler refreshes a State from the audio server. Failures never change the
// committed value and never stop the sampler.
type Sampler struct {
	dialer   Dialer
	state    *State
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	errs     chan error

	conn      Conn
	connState atomic.Int32
	failing   bool
}

func NewSampler(dialer Dialer, state *State, interval time.Duration, opts ...Option) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s := &Sampler{
		dialer:   dialer,
		state:    state,
		interval: interval,
		timeout:  interval,
		now:      time.Now,
		errs:     make(chan error, defaultErrorBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ConnState returns the current connection state. Safe for concurrent use.
func (s *Sampler) ConnState() ConnState {
	return ConnState(s.connState.Load())
}

// Errors receives sampling failures. Failures are dropped while the buffer is full.
func (s *Sampler) Errors() <-chan error {
	return s.errs
}

// Run samples immediately and then every interval until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	defer s.disconnect()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		_ = s.Step(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Step performs one sampling attempt: connect if needed, query, commit on success.
func (s *Sampler) Step(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New().WithData(ErrPanic, r)
			s.dropConn()
			s.fail(err)
		}
	}()

	if s.conn == nil {
		s.setConnState(Connecting)

		dialCtx, cancel := context.WithTimeout(ctx, s.timeout)
		conn, err := s.dialer.Dial(dialCtx)
		cancel()
		if err != nil {
			err = errors.New().Wrap(ErrConnectFailed, err)
			s.fail(err)
			return err
		}
		s.conn = conn
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	percent, err := s.conn.Volume(queryCtx)
	cancel()
	if err != nil {
		if !errors.HasCode(err, ErrQueryTimeout) && !errors.HasCode(err, ErrMalformed) {
			err = errors.New().Wrap(ErrQueryFailed, err)
		}
		s.dropConn()
		s.fail(err)
		return err
	}

	s.state.Set(percent, s.now())
	if s.failing {
		logger.Info().Uint8("volume", percent).Msg("Volume sampling recovered")
		s.failing = false
	}
	s.setConnState(Ready)

	return nil
}

func (s *Sampler) fail(err error) {
	if !s.failing {
		logger.Warn().Err(err).Msg("Volume sampling failed, keeping last value")
		s.failing = true
	} else {
		logger.Debug().Err(err).Msg("Volume sampling still failing")
	}
	s.setConnState(Failed)

	select {
	case s.errs <- err:
	default:
	}
}

func (s *Sampler) dropConn() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		logger.Debug().Err(err).Msg("Failed to close audio server connection")
	}
	s.conn = nil
}

func (s *Sampler) disconnect() {
	s.dropConn()
	s.setConnState(Disconnected)
}

func (s *Sampler) setConnState(state ConnState) {
	s.connState.Store(int32(state))
}
