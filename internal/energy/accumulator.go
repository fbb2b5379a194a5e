// Package energy integrates instantaneous power readings into a running
// energy total.
package energy

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// wattNanosPerWattHour converts the internal watt-nanosecond total to Wh
// (3600 s/h * 1e9 ns/s).
const wattNanosPerWattHour = 3.6e12

var (
	// ErrInvalidSample is returned for samples with no stamp or a non-finite power value
	ErrInvalidSample = errors.New("invalid sample")
	// ErrOutOfOrder is returned for samples stamped before the last integrated sample
	ErrOutOfOrder = errors.New("sample out of order")
)

// Sample is one timestamped instantaneous power reading
type Sample struct {
	Stamp time.Time
	Watts float64
}

// Report is produced after each integration step once time has elapsed
type Report struct {
	WattHours float64       // Total energy consumed since the first sample
	Interval  time.Duration // Interval integrated by this step
	Total     time.Duration // Time covered since the first sample
}

// Accumulator keeps a running energy total over elapsed sample time.
// The zero value is ready to use.
type Accumulator struct {
	consumed float64 // watt-nanoseconds
	first    time.Time
	last     time.Time
	seeded   bool
}

// Integrate adds a sample to the running total.
//
// The first sample only seeds the timestamps. Every later sample contributes
// its power over the interval since the previous sample. A report is returned
// once the integrated span is non-zero. Rejected samples leave the
// accumulator unchanged.
func (a *Accumulator) Integrate(s Sample) (Report, bool, error) {
	if s.Stamp.IsZero() {
		return Report{}, false, errors.Wrap(ErrInvalidSample, "missing stamp")
	}
	if math.IsNaN(s.Watts) || math.IsInf(s.Watts, 0) {
		return Report{}, false, errors.Wrapf(ErrInvalidSample, "power %v", s.Watts)
	}

	if !a.seeded {
		a.first = s.Stamp
		a.last = s.Stamp
		a.seeded = true
		return Report{}, false, nil
	}

	elapsed := s.Stamp.Sub(a.last)
	if elapsed < 0 {
		return Report{}, false, errors.Wrapf(ErrOutOfOrder,
			"stamp %s is %s before last sample", s.Stamp.Format(time.RFC3339Nano), -elapsed)
	}

	a.consumed += s.Watts * float64(elapsed.Nanoseconds())
	a.last = s.Stamp

	total := a.last.Sub(a.first)
	if total <= 0 {
		return Report{}, false, nil
	}

	return Report{
		WattHours: a.WattHours(),
		Interval:  elapsed,
		Total:     total,
	}, true, nil
}

// WattHours returns the energy consumed so far in Wh
func (a *Accumulator) WattHours() float64 {
	return a.consumed / wattNanosPerWattHour
}

// Elapsed returns the time covered between the first and last samples
func (a *Accumulator) Elapsed() time.Duration {
	if !a.seeded {
		return 0
	}
	return a.last.Sub(a.first)
}

// Seeded reports whether the first sample has been observed
func (a *Accumulator) Seeded() bool {
	return a.seeded
}
