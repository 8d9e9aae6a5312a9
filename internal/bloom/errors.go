package bloom

import "errors"

var (
	ErrClosed      = errors.New("bloom: engine closed")
	ErrInvalidSize = errors.New("bloom: invalid target size")
	ErrNoSource    = errors.New("bloom: no source image")
)
