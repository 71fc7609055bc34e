package enrich

import "github.com/okian/cinerank/internal/domain/region"

// Option configures a Joiner.
type Option func(*Joiner)

// WithCountryNames sets the region code to country name lookup.
func WithCountryNames(names region.NameLookup) Option {
	return func(j *Joiner) {
		j.names = names
	}
}

// WithPopulations sets the region code to population lookup.
func WithPopulations(populations PopulationLookup) Option {
	return func(j *Joiner) {
		j.populations = populations
	}
}

// WithUnknownRank sets the rank used for unknown population and GDP values.
func WithUnknownRank(rank int) Option {
	return func(j *Joiner) {
		if rank > 0 {
			j.unknownRank = rank
		}
	}
}
