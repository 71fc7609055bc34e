package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound     = errors.New("key not found")
	ErrDuplicateKey = errors.New("key already on board")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
