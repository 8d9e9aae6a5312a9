package render

import "image"

// Target is the final frame a host presents.
type Target interface {
	// Clear resets the frame to the host's clear colour.
	Clear() error

	// DrawAdditive stretches src over dst and adds it to what is already
	// there. Source alpha does not scale the contribution.
	DrawAdditive(src *image.RGBA, dst image.Rectangle) error

	// DrawText draws text with ordinary alpha blending at pos.
	DrawText(pos image.Point, text string) error
}
