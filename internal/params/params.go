package params

import (
	"github.com/guidoenr/bloomer/internal/bloom"
)

// Streak lengths reachable from input.
const (
	MinStreakLength = 1
	MaxStreakLength = 2
)

// State is the effect configuration plus the resolution mode. It has a
// single writer, the tick loop, and is handed to the renderer by value.
type State struct {
	Preset       bloom.Preset
	Threshold    float64
	StreakLength int
	UseLuminance bool

	// DownsamplePasses is reported by the engine after each Configure and is
	// only ever displayed.
	DownsamplePasses int

	HalfResolution bool
}

// Defaults returns the starting state of the demo.
func Defaults() State {
	s := bloom.DefaultSettings()
	return State{
		Preset:           s.Preset,
		Threshold:        s.Threshold,
		StreakLength:     s.StreakLength,
		UseLuminance:     s.UseLuminance,
		DownsamplePasses: 0,
		HalfResolution:   false,
	}
}

// SetThreshold stores v clamped to [0, 1].
func (s *State) SetThreshold(v float64) {
	s.Threshold = clamp(v, 0, 1)
}

// SetStreakLength stores n if it is a reachable streak length and reports
// whether it did.
func (s *State) SetStreakLength(n int) bool {
	if n < MinStreakLength || n > MaxStreakLength {
		return false
	}
	s.StreakLength = n
	return true
}

// SetPreset stores p if it names a known preset and reports whether it did.
func (s *State) SetPreset(p bloom.Preset) bool {
	if !p.Valid() {
		return false
	}
	s.Preset = p
	return true
}

// Settings is the snapshot handed to the bloom engine before each draw.
func (s State) Settings() bloom.Settings {
	return bloom.Settings{
		Preset:       s.Preset,
		Threshold:    s.Threshold,
		StreakLength: s.StreakLength,
		UseLuminance: s.UseLuminance,
	}
}

// WorkingSize returns the bloom resolution for the given output size: the
// output size itself, or half of it (integer division) in half-resolution
// mode. Neither dimension drops below 1.
func (s State) WorkingSize(baseWidth, baseHeight int) (int, int) {
	w, h := baseWidth, baseHeight
	if s.HalfResolution {
		w /= 2
		h /= 2
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func clamp(v, minVal, maxVal float64) float64 {
	if v != v {
		return minVal
	}
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
