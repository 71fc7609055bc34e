package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then key ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the board from
// best to worst. Ranks use min semantics: equal scores share the best rank
// and the next score skips ahead.

type node struct {
	key   string
	score float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aKey) should appear before (bScore, bKey).
func less(aScore float64, aKey string, bScore float64, bKey string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aKey < bKey
}

// normalize maps NaN to -Inf so that every score is ordered.
func normalize(score float64) float64 {
	if math.IsNaN(score) {
		return math.Inf(-1)
	}
	return score
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, key string, score float64) *node {
	if n == nil {
		return &node{key: key, score: score, prio: rand.Uint64(), size: 1}
	}
	if less(score, key, n.score, n.key) {
		n.left = insert(n.left, key, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, key, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// countAbove returns the number of nodes with a score strictly greater than score.
func countAbove(n *node, score float64) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

type record[T any] struct {
	score float64
	item  T
}

// Board is a ranked leaderboard of items keyed by string. It is safe for
// concurrent use.
type Board[T any] struct {
	mu    sync.RWMutex
	root  *node
	byKey map[string]record[T]
	cfg   boardConfig
}

var _ Store[struct{}] = (*Board[struct{}])(nil)

// NewBoard constructs an empty board with configuration options.
func NewBoard[T any](opts ...Option) *Board[T] {
	b := &Board[T]{
		byKey: make(map[string]record[T]),
		cfg:   boardConfig{name: "default"},
	}
	for _, opt := range opts {
		opt(&b.cfg)
	}
	return b
}

// Put implements Store.Put with O(log n) expected time.
func (b *Board[T]) Put(ctx context.Context, key string, score float64, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	score = normalize(score)

	b.mu.Lock()
	if _, exists := b.byKey[key]; exists {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s on board %s", ErrDuplicateKey, key, b.cfg.name)
	}
	b.byKey[key] = record[T]{score: score, item: item}
	b.root = insert(b.root, key, score)
	count := len(b.byKey)
	b.mu.Unlock()

	if b.cfg.metrics != nil {
		b.cfg.metrics.UpdateLeaderboardEntries(b.cfg.name, count)
	}
	return nil
}

// Rank returns the current rank and score for key in O(log n).
func (b *Board[T]) Rank(_ context.Context, key string) (Entry[T], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.byKey[key]
	if !ok {
		return Entry[T]{}, ErrNotFound
	}
	return Entry[T]{
		Rank:  countAbove(b.root, rec.score) + 1,
		Key:   key,
		Score: rec.score,
		Item:  rec.item,
	}, nil
}

// TopN returns the top N entries ordered by score desc, then key asc.
func (b *Board[T]) TopN(_ context.Context, n int) ([]Entry[T], error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(b.byKey)))
	collectTopN(b.root, n, &nodes)

	out := make([]Entry[T], len(nodes))
	for i, nd := range nodes {
		out[i] = Entry[T]{Rank: i + 1, Key: nd.key, Score: nd.score, Item: b.byKey[nd.key].item}
		if i > 0 && nd.score == nodes[i-1].score {
			out[i].Rank = out[i-1].Rank
		}
	}
	return out, nil
}

// All returns every entry in rank order.
func (b *Board[T]) All(ctx context.Context) []Entry[T] {
	n := b.Count(ctx)
	if n == 0 {
		return nil
	}
	out, _ := b.TopN(ctx, n)
	return out
}

// Count returns the number of keys on the board.
func (b *Board[T]) Count(_ context.Context) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byKey)
}
