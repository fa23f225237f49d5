// Package status renders one tick's values into the bar line.
package status

import (
	"fmt"
	"strings"
	"time"

	"codeberg.org/mutker/hoststatus/internal/netclass"
	"codeberg.org/mutker/hoststatus/internal/sample"
)

const (
	DefaultWidth       = 5
	DefaultSeparator   = " | "
	DefaultClockFormat = "Mon 02 Jan 03:04:05 PM"

	// volumeWidth fits "100".
	volumeWidth = 3
)

type Options struct {
	Width       int
	Separator   string
	ClockFormat string
	Icons       Icons
	// Fallback is rendered for invalid samples.
	Fallback float64
}

// Values are the inputs of one tick. GPU is nil when the host has no usable GPU.
type Values struct {
	Disks  []sample.Sample
	Memory sample.Sample
	CPU    sample.Sample
	GPU    *sample.Sample
	Link   netclass.Link
	Volume uint8
	Time   time.Time
}

type Segment struct {
	Icon string
	Text string
}

func (s Segment) String() string {
	if s.Text == "" {
		return s.Icon
	}

	return s.Icon + " " + s.Text
}

// Line is an immutable rendered status line.
type Line struct {
	segments  []Segment
	separator string
}

// Segments returns a copy of the line's segments.
func (l Line) Segments() []Segment {
	return append([]Segment(nil), l.segments...)
}

func (l Line) String() string {
	parts := make([]string, len(l.segments))
	for i, s := range l.segments {
		parts[i] = s.String()
	}

	return strings.Join(parts, l.separator)
}

type Formatter struct {
	opts Options
}

// NewFormatter fills unset options with defaults.
func NewFormatter(opts Options) *Formatter {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if opts.ClockFormat == "" {
		opts.ClockFormat = DefaultClockFormat
	}
	if opts.Icons == (Icons{}) {
		opts.Icons = DefaultIcons
	}

	return &Formatter{opts: opts}
}

// Format renders disks, memory, CPU, GPU, network, volume and clock in that order.
func (f *Formatter) Format(v Values) Line {
	segs := make([]Segment, 0, len(v.Disks)+6)

	for _, d := range v.Disks {
		segs = append(segs, f.percent(d))
	}
	segs = append(segs, f.percent(v.Memory), f.percent(v.CPU))
	if v.GPU != nil {
		segs = append(segs, f.percent(*v.GPU))
	}

	segs = append(segs,
		Segment{Icon: f.opts.Icons.ForLink(v.Link)},
		Segment{Icon: f.opts.Icons.Volume, Text: fmt.Sprintf("%*d%%", volumeWidth, v.Volume)},
		Segment{Icon: f.opts.Icons.Clock, Text: v.Time.Format(f.opts.ClockFormat)},
	)

	return Line{segments: segs, separator: f.opts.Separator}
}

func (f *Formatter) percent(s sample.Sample) Segment {
	return Segment{
		Icon: f.opts.Icons.ForKind(s.Kind),
		Text: FormatPercent(s.Or(f.opts.Fallback), f.opts.Width),
	}
}

// FormatPercent renders v with one fractional digit, right-aligned to width, plus "%".
func FormatPercent(v float64, width int) string {
	return fmt.Sprintf("%*.1f%%", width, v)
}
