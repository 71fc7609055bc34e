// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and CINERANK_ env vars.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// TopMoviesPerCountry is how many best rated movies are averaged per country.
	TopMoviesPerCountry int `koanf:"top_movies_per_country"`

	// CountryLimit caps the printed cumulative weighted board.
	CountryLimit int `koanf:"country_limit"`

	// DirectorLimit caps the printed director board.
	DirectorLimit int `koanf:"director_limit"`

	// DirectorMinFilms is the number of movies a director needs to be ranked.
	DirectorMinFilms int `koanf:"director_min_films"`

	// DirectorTopRank is the dense rating rank up to which a director's films count.
	DirectorTopRank int `koanf:"director_top_rank"`

	// DirectorDefaultVariance replaces a variance that cannot be computed.
	DirectorDefaultVariance float64 `koanf:"director_default_variance"`

	// UnknownRank is assigned when population or GDP is unknown.
	UnknownRank int `koanf:"unknown_rank"`

	// GDPRankOffset is added to the GDP rank in the weighted score.
	GDPRankOffset float64 `koanf:"gdp_rank_offset"`

	// SplitDirectors credits each director of a multi-director movie separately.
	SplitDirectors bool `koanf:"split_directors"`

	// MetricsFile, when set, receives run metrics in Prometheus text format.
	MetricsFile string `koanf:"metrics_file"`

	// CPUProfile, when set, receives a pprof CPU profile of the run.
	CPUProfile string `koanf:"cpu_profile"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		TopMoviesPerCountry:     250,
		CountryLimit:            50,
		DirectorLimit:           15,
		DirectorMinFilms:        20,
		DirectorTopRank:         20,
		DirectorDefaultVariance: 6,
		UnknownRank:             30,
		GDPRankOffset:           10,
	}
}

// Validate checks limits and the log level.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"top_movies_per_country", c.TopMoviesPerCountry},
		{"country_limit", c.CountryLimit},
		{"director_limit", c.DirectorLimit},
		{"director_min_films", c.DirectorMinFilms},
		{"director_top_rank", c.DirectorTopRank},
		{"unknown_rank", c.UnknownRank},
	}
	for _, p := range positive {
		if p.value < 1 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.value)
		}
	}
	if c.GDPRankOffset < 0 {
		return fmt.Errorf("%w: gdp_rank_offset must not be negative", ErrInvalidConfig)
	}
	if c.DirectorDefaultVariance < 0 {
		return fmt.Errorf("%w: director_default_variance must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
