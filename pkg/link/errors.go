package link

import "errors"

var (
	// ErrFrameTooLarge indicates more elements than a frame header can declare.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrBadFrame indicates a byte slice is not exactly one well-formed frame.
	ErrBadFrame = errors.New("bad frame")
)
