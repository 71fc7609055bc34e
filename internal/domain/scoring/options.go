package scoring

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithGDPRankOffset sets the constant added to the GDP rank in the weighted score.
func WithGDPRankOffset(offset float64) Option {
	return func(e *Engine) {
		if offset >= 0 {
			e.gdpRankOffset = offset
		}
	}
}

// WithDirectorThresholds sets the minimum number of films a director needs and
// the dense rating rank up to which films are counted.
func WithDirectorThresholds(minFilms, topRank int) Option {
	return func(e *Engine) {
		if minFilms > 0 {
			e.minFilms = minFilms
		}
		if topRank > 0 {
			e.topRank = topRank
		}
	}
}

// WithDefaultVariance sets the variance used when it cannot be computed.
func WithDefaultVariance(v float64) Option {
	return func(e *Engine) {
		if v >= 0 {
			e.defaultVariance = v
		}
	}
}

// WithSplitDirectors credits every director of a multi-director field
// separately instead of grouping by the raw field.
func WithSplitDirectors(split bool) Option {
	return func(e *Engine) {
		e.splitDirectors = split
	}
}
