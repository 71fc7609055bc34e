package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*InMemoryDeduper)

// WithCapacity pre-sizes the seen set. Non-positive values are ignored.
func WithCapacity(capacity int) Option {
	return func(d *InMemoryDeduper) {
		if capacity > 0 {
			d.capacity = capacity
		}
	}
}
