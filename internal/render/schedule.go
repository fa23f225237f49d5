package render

import "time"

// Schedule yields fixed-rate deadlines start+k*interval. A deadline that has already
// passed is not waited for and not replayed; the grid itself never shifts.
type Schedule struct {
	start    time.Time
	interval time.Duration
	k        int64
}

func NewSchedule(start time.Time, interval time.Duration) *Schedule {
	return &Schedule{start: start, interval: interval}
}

// Next advances to the next deadline and returns the wait from now, or 0 if it has passed.
func (s *Schedule) Next(now time.Time) time.Duration {
	s.k++
	deadline := s.start.Add(time.Duration(s.k) * s.interval)

	if wait := deadline.Sub(now); wait > 0 {
		return wait
	}

	return 0
}
