// Package sample holds the per-tick metric values passed from the samplers to the formatter.
package sample

import "fmt"

// Kind is the metric class a Sample belongs to.
type Kind int

const (
	Disk Kind = iota
	Memory
	CPU
	GPU
	Network
	Volume
	Clock
)

var kindNames = [...]string{
	Disk:    "disk",
	Memory:  "memory",
	CPU:     "cpu",
	GPU:     "gpu",
	Network: "network",
	Volume:  "volume",
	Clock:   "clock",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}

	return kindNames[k]
}

// Sample is one metric's value for the current tick. Mount is set only for Disk.
type Sample struct {
	Kind  Kind
	Mount string
	Value float64
	Valid bool
}

// Of returns a valid sample.
func Of(kind Kind, value float64) Sample {
	return Sample{Kind: kind, Value: value, Valid: true}
}

// Invalid returns a sample that renders its fallback value.
func Invalid(kind Kind) Sample {
	return Sample{Kind: kind}
}

// Or returns the sample's value, or fallback when the sample is invalid.
func (s Sample) Or(fallback float64) float64 {
	if !s.Valid {
		return fallback
	}

	return s.Value
}

// Percent computes 100*part/total, clamped to [0,100]. A zero total yields 0.
func Percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}

	p := 100 * float64(part) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}

	return p
}

// UsedPercent computes 100*(1-available/total) for a capacity with available free space.
func UsedPercent(available, total uint64) float64 {
	if total == 0 {
		return 0
	}
	if available > total {
		available = total
	}

	return Percent(total-available, total)
}
