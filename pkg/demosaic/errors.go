package demosaic

import "errors"

// Input errors. They are returned, wrapped with context, before any
// tile work starts.
var(
	ErrEmptyImage    = errors.New("demosaic: zero sized image")
	ErrMosaicSize    = errors.New("demosaic: mosaic length does not match dimensions")
	ErrInvalidCFA    = errors.New("demosaic: invalid CFA code")
	ErrUnknownMethod = errors.New("demosaic: unknown method")
)
