// Package repository holds ranked leaderboards in memory.
package repository

import "context"

// Entry represents a leaderboard row.
type Entry[T any] struct {
	Rank  int
	Key   string
	Score float64
	Item  T
}

// Store provides read/write access to a ranked leaderboard.
type Store[T any] interface {
	// Put adds key with its score and item. A key already on the board
	// returns ErrDuplicateKey and leaves the board unchanged.
	Put(ctx context.Context, key string, score float64, item T) error

	// Rank returns the current rank and score for key.
	// Returns ErrNotFound if the key is unknown.
	Rank(ctx context.Context, key string) (Entry[T], error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry[T], error)

	// Count returns the number of keys on the board.
	Count(ctx context.Context) int
}
