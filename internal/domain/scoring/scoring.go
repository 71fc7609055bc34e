// Package scoring computes the country and director leaderboards from
// enriched movie rows.
package scoring

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/cinerank/internal/domain/model"
	"github.com/okian/cinerank/internal/domain/rank"
)

// Default scoring configuration constants.
const (
	DefaultGDPRankOffset   = 10
	DefaultMinFilms        = 20
	DefaultTopRank         = 20
	DefaultDefaultVariance = 6
)

// Engine computes leaderboard rows. The zero value is not usable; use New.
type Engine struct {
	gdpRankOffset   float64
	minFilms        int
	topRank         int
	defaultVariance float64
	splitDirectors  bool
}

// New creates an Engine with the given options applied over the defaults.
func New(opts ...Option) *Engine {
	e := &Engine{
		gdpRankOffset:   DefaultGDPRankOffset,
		minFilms:        DefaultMinFilms,
		topRank:         DefaultTopRank,
		defaultVariance: DefaultDefaultVariance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WeightedScore is
//
//	rating² · √(offset+RankGDP) · √RankMovieCount · CDFVotes · √PopulationRank · √GDPPerCapitaRank
func WeightedScore(m model.Movie, gdpRankOffset float64) float64 {
	return m.AverageRating * m.AverageRating *
		math.Sqrt(gdpRankOffset+float64(m.RankGDP)) *
		math.Sqrt(float64(m.RankMovieCount)) *
		m.CDFVotes *
		math.Sqrt(float64(m.PopulationRank)) *
		math.Sqrt(float64(m.GDPPerCapitaRank))
}

// Weighted scores one movie with the engine's GDP rank offset.
func (e *Engine) Weighted(m model.Movie) float64 {
	return WeightedScore(m, e.gdpRankOffset)
}

// TopMoviesAverage returns, per country, the mean rating of its x best rated
// movies. Equal ratings keep input order. Rows are ordered by country name.
func TopMoviesAverage(movies []model.Movie, x int) []model.CountryScore {
	if x < 1 {
		return nil
	}
	countries, groups := groupBy(movies, func(m model.Movie) []string { return []string{m.Country} })
	out := make([]model.CountryScore, 0, len(countries))
	for _, c := range countries {
		rows := groups[c]
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].AverageRating > rows[b].AverageRating })
		if len(rows) > x {
			rows = rows[:x]
		}
		out = append(out, model.CountryScore{Country: c, Score: stat.Mean(ratings(rows), nil)})
	}
	return out
}

// CumulativeWeighted sums the weighted score of every movie per country.
// Rows are ordered by country name.
func (e *Engine) CumulativeWeighted(movies []model.Movie) []model.CountryScore {
	sums := make(map[string]float64)
	for _, m := range movies {
		sums[m.Country] += e.Weighted(m)
	}
	out := make([]model.CountryScore, 0, len(sums))
	for c, s := range sums {
		out = append(out, model.CountryScore{Country: c, Score: s})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Country < out[b].Country })
	return out
}

// DirectorStats scores every director credited on at least minFilms movies.
// Only a director's films with a dense rating rank up to topRank count. Mean
// and population variance of their ratings are both scaled by the mean votes
// percentile of the same films; the final rating is mean − √variance. Rows
// are ordered by director.
func (e *Engine) DirectorStats(movies []model.Movie) []model.DirectorStat {
	directors, groups := groupBy(movies, e.directorKeys)
	out := make([]model.DirectorStat, 0)
	for _, d := range directors {
		rows := groups[d]
		if len(rows) < e.minFilms {
			continue
		}
		kept := make([]model.Movie, 0, len(rows))
		for i, r := range rank.DenseDescending(ratings(rows)) {
			if r <= e.topRank {
				kept = append(kept, rows[i])
			}
		}

		cdf := make([]float64, len(kept))
		for i, m := range kept {
			cdf[i] = m.CDFVotes
		}
		meanCDF := stat.Mean(cdf, nil)
		mean, variance := stat.PopMeanVariance(ratings(kept), nil)
		mean *= meanCDF
		variance *= meanCDF
		if len(kept) < 2 || math.IsNaN(variance) {
			variance = e.defaultVariance
		}
		out = append(out, model.DirectorStat{
			Director:       d,
			Films:          len(kept),
			MeanRating:     mean,
			RatingVariance: variance,
			Rating:         mean - math.Sqrt(variance),
		})
	}
	return out
}

// directorKeys returns the grouping keys of a movie's director field. Rows
// without a director produce none.
func (e *Engine) directorKeys(m model.Movie) []string {
	d := strings.TrimSpace(m.Directors)
	if d == "" || d == model.NullMarker {
		return nil
	}
	if !e.splitDirectors {
		return []string{d}
	}
	var keys []string
	for _, p := range strings.Split(d, ",") {
		if p = strings.TrimSpace(p); p != "" && p != model.NullMarker {
			keys = append(keys, p)
		}
	}
	return keys
}

// groupBy buckets movies under each of their keys, preserving input order in
// every bucket. Keys are returned sorted.
func groupBy(movies []model.Movie, keys func(model.Movie) []string) ([]string, map[string][]model.Movie) {
	groups := make(map[string][]model.Movie)
	for _, m := range movies {
		for _, k := range keys(m) {
			groups[k] = append(groups[k], m)
		}
	}
	names := make([]string, 0, len(groups))
	for k := range groups {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, groups
}

func ratings(movies []model.Movie) []float64 {
	out := make([]float64, len(movies))
	for i, m := range movies {
		out[i] = m.AverageRating
	}
	return out
}
