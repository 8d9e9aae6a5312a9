package bloom

import "image"

// Settings are the per-call inputs an engine reads before each Draw.
type Settings struct {
	Preset       Preset
	Threshold    float64
	StreakLength int
	UseLuminance bool
}

// Engine produces a bloom layer from a source image.
type Engine interface {
	// Configure replaces the settings used by subsequent Draw calls.
	Configure(s Settings)

	// Draw returns a bloom layer whose bounds are exactly width x height.
	// The returned image may be reused by the next Draw call.
	Draw(src *image.RGBA, width, height int) (*image.RGBA, error)

	// DownsamplePasses reports the pass count derived from the current preset.
	DownsamplePasses() int

	// Close releases engine resources. Draw fails with ErrClosed afterwards.
	Close() error
}
