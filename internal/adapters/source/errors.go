package source

import "errors"

// Sentinel kinds for loader errors.
var (
	ErrMissingColumn  = errors.New("missing required column")
	ErrMalformedValue = errors.New("malformed value")
	ErrDecode         = errors.New("cannot decode input")
)
