package app

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrMissingInput     = errors.New("missing input")
	ErrInvalidYearRange = errors.New("start year after end year")
)
