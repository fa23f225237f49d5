package volume

import (
	"sync"
	"time"
)

// MaxPercent is the largest value the cell stores.
const MaxPercent = 100

// Reading is a copy of the shared cell.
type Reading struct {
	Percent   uint8
	UpdatedAt time.Time
}

// State is the single cell shared by the sampler (only writer) and the render loop
// (only reader). The lock is held for the copy only.
type State struct {
	mu      sync.Mutex
	reading Reading
}

// NewState returns a cell holding 0 with a zero UpdatedAt.
func NewState() *State {
	return &State{}
}

// Set commits a successfully observed value, clamped to MaxPercent.
func (s *State) Set(percent uint8, at time.Time) {
	if percent > MaxPercent {
		percent = MaxPercent
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading = Reading{Percent: percent, UpdatedAt: at}
}

// Get returns the most recently committed reading.
func (s *State) Get() Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading
}

// Staleness is the age of the reading at now, or -1 when nothing was ever committed.
func (r Reading) Staleness(now time.Time) time.Duration {
	if r.UpdatedAt.IsZero() {
		return -1
	}

	return now.Sub(r.UpdatedAt)
}
