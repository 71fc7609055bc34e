// Package dedupe tracks keys already seen so that joins keep the first row
// for every key.
package dedupe

import "context"

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord reports whether key was seen before and records it if not.
	SeenAndRecord(ctx context.Context, key string) bool

	// Duplicates returns how many SeenAndRecord calls hit an existing key.
	Duplicates() int64
}

// InMemoryDeduper implements Deduper with a map. It is not safe for
// concurrent use; the pipeline is single threaded.
type InMemoryDeduper struct {
	seen     map[string]struct{}
	capacity int
	dupes    int64
}

var _ Deduper = (*InMemoryDeduper)(nil)

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) *InMemoryDeduper {
	d := &InMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, d.capacity)
	return d
}

// SeenAndRecord reports true if key was already recorded.
func (d *InMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	if _, ok := d.seen[key]; ok {
		d.dupes++
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

// Duplicates returns how many SeenAndRecord calls hit an existing key.
func (d *InMemoryDeduper) Duplicates() int64 {
	return d.dupes
}
