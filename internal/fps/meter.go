package fps

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidElapsed is returned for a frame duration that is zero or negative.
var ErrInvalidElapsed = errors.New("fps: elapsed time must be positive")

const (
	// An average below this value has not been seeded yet.
	unsetEpsilon = 0.01

	// Weight of the previous average; roughly a 20 frame window.
	smoothing = 0.95
)

// Meter keeps an exponentially smoothed frames-per-second estimate.
// The zero value is ready to use.
type Meter struct {
	avg  float64
	last float64
}

// Update folds one frame duration into the average and returns it. The first
// sample seeds the average directly. A non-positive duration leaves the
// average untouched.
func (m *Meter) Update(elapsed time.Duration) (float64, error) {
	if elapsed <= 0 {
		return m.avg, ErrInvalidElapsed
	}

	ms := float64(elapsed) / float64(time.Millisecond)
	instant := math.Round(1000/ms*10) / 10
	m.last = instant

	if m.avg < unsetEpsilon {
		m.avg = instant
		return m.avg, nil
	}
	m.avg = m.avg*smoothing + instant*(1-smoothing)
	return m.avg, nil
}

// Average returns the smoothed estimate, zero before the first sample.
func (m *Meter) Average() float64 {
	return m.avg
}

// Instant returns the rounded rate of the most recent sample.
func (m *Meter) Instant() float64 {
	return m.last
}
