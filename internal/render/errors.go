package render

import "errors"

var (
	ErrLayerSize   = errors.New("render: bloom layer does not match working size")
	ErrNoSource    = errors.New("render: no source image")
	ErrInvalidSize = errors.New("render: invalid output size")
)
