package app

import (
	"github.com/okian/cinerank/internal/domain/enrich"
	"github.com/okian/cinerank/internal/domain/region"
	"github.com/okian/cinerank/internal/domain/scoring"
	"github.com/okian/cinerank/pkg/logger"
	"github.com/okian/cinerank/pkg/metrics"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the metrics manager runs report to.
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithCountryNames replaces the embedded country name table.
func WithCountryNames(names region.NameLookup) Option {
	return func(p *Pipeline) {
		p.names = names
	}
}

// WithPopulations replaces the embedded population table.
func WithPopulations(populations enrich.PopulationLookup) Option {
	return func(p *Pipeline) {
		p.populations = populations
	}
}

// WithTopMoviesPerCountry sets how many best rated movies are averaged per country.
func WithTopMoviesPerCountry(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.topMovies = n
		}
	}
}

// WithBoardLimits sets how many rows of the cumulative and director boards are kept.
func WithBoardLimits(countries, directors int) Option {
	return func(p *Pipeline) {
		if countries > 0 {
			p.countryLimit = countries
		}
		if directors > 0 {
			p.directorLimit = directors
		}
	}
}

// WithUnknownRank sets the rank of unknown population and GDP values.
func WithUnknownRank(rank int) Option {
	return func(p *Pipeline) {
		if rank > 0 {
			p.unknownRank = rank
		}
	}
}

// WithScoring passes options to the scoring engine.
func WithScoring(opts ...scoring.Option) Option {
	return func(p *Pipeline) {
		p.scoring = append(p.scoring, opts...)
	}
}
