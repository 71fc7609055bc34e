// Package enrich joins resolved movies with country names, GDP, ratings, crew
// and population, then derives the per-row rank columns.
package enrich

import (
	"context"

	"github.com/okian/cinerank/internal/domain/dedupe"
	"github.com/okian/cinerank/internal/domain/model"
	"github.com/okian/cinerank/internal/domain/rank"
	"github.com/okian/cinerank/internal/domain/region"
)

// DefaultUnknownRank is the rank given to rows whose underlying value is unknown.
const DefaultUnknownRank = 30

// PopulationLookup resolves a region code to a population count.
type PopulationLookup interface {
	Lookup(code string) (float64, bool)
}

// Inputs are the tables joined by Build. Regions must already be decided.
type Inputs struct {
	Regions []model.MovieRegion
	GDP     []model.GDP
	Ratings []model.Rating
	Crew    []model.Crew
}

// Stats counts what the join dropped or could not resolve.
type Stats struct {
	Movies int

	CountryMisses    int
	GDPMisses        int
	PopulationMisses int

	DuplicateTitles  int
	DuplicateGDP     int
	DuplicateRatings int
	DuplicateCrew    int

	WithoutRating int
	WithoutCrew   int
}

// Joiner builds enriched movie rows.
type Joiner struct {
	names       region.NameLookup
	populations PopulationLookup
	unknownRank int
}

// New creates a Joiner. Without lookups every country is International and
// every population unknown.
func New(opts ...Option) *Joiner {
	j := &Joiner{unknownRank: DefaultUnknownRank}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Build joins the inputs and fills every derived column. Output order follows
// in.Regions; a title identifier appears at most once.
func (j *Joiner) Build(ctx context.Context, in Inputs) ([]model.Movie, Stats) {
	var st Stats

	gdp, dupGDP := firstWins(ctx, in.GDP, func(g model.GDP) string { return g.Country })
	ratings, dupRatings := firstWins(ctx, in.Ratings, func(r model.Rating) string { return r.TConst })
	crew, dupCrew := firstWins(ctx, in.Crew, func(c model.Crew) string { return c.TConst })
	st.DuplicateGDP, st.DuplicateRatings, st.DuplicateCrew = dupGDP, dupRatings, dupCrew

	movies := make([]model.Movie, 0, len(in.Regions))
	var seenTitles dedupe.Deduper = dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(in.Regions)))
	for _, mr := range in.Regions {
		if seenTitles.SeenAndRecord(ctx, mr.TitleID) {
			continue
		}
		r, ok := ratings[mr.TitleID]
		if !ok {
			st.WithoutRating++
			continue
		}
		c, ok := crew[mr.TitleID]
		if !ok {
			st.WithoutCrew++
			continue
		}

		m := model.Movie{
			TitleID:       mr.TitleID,
			Title:         mr.Title,
			Region:        mr.Region,
			Country:       region.CountryName(j.names, mr.Region),
			GDP:           model.Unknown,
			RankGDP:       j.unknownRank,
			AverageRating: r.AverageRating,
			NumVotes:      r.NumVotes,
			Directors:     c.Directors,
		}
		if m.Country == model.International && mr.Region != "" && mr.Region != model.International && mr.Region != model.NullMarker {
			st.CountryMisses++
		}
		if g, ok := gdp[m.Country]; ok {
			m.GDP = g.Millions
			m.RankGDP = g.Rank
		} else {
			st.GDPMisses++
		}
		m.Population = j.population(mr.Region)
		if !m.Population.Known {
			st.PopulationMisses++
		}
		m.GDPPerCapita = m.GDP.Div(m.Population)
		movies = append(movies, m)
	}
	st.DuplicateTitles = int(seenTitles.Duplicates())
	st.Movies = len(movies)

	j.derive(movies)
	return movies, st
}

func (j *Joiner) population(code string) model.Metric {
	if j.populations == nil || code == "" || code == model.International || code == model.NullMarker {
		return model.Unknown
	}
	p, ok := j.populations.Lookup(code)
	if !ok {
		return model.Unknown
	}
	return model.KnownMetric(p)
}

// firstWins indexes rows by key, keeping the first row for every key, and
// reports how many later rows were dropped.
func firstWins[T any](ctx context.Context, rows []T, key func(T) string) (map[string]T, int) {
	var seen dedupe.Deduper = dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(rows)))
	out := make(map[string]T, len(rows))
	for _, r := range rows {
		k := key(r)
		if seen.SeenAndRecord(ctx, k) {
			continue
		}
		out[k] = r
	}
	return out, int(seen.Duplicates())
}

// derive fills CDFVotes, PopulationRank, GDPPerCapitaRank, MovieCount and
// RankMovieCount across the whole table.
func (j *Joiner) derive(movies []model.Movie) {
	votes := make([]float64, len(movies))
	for i, m := range movies {
		votes[i] = float64(m.NumVotes)
	}
	for i, p := range rank.AveragePercentile(votes) {
		movies[i].CDFVotes = p
	}

	pop := j.denseOrUnknown(movies, func(m model.Movie) model.Metric { return m.Population })
	perCapita := j.denseOrUnknown(movies, func(m model.Movie) model.Metric { return m.GDPPerCapita })
	for i := range movies {
		movies[i].PopulationRank = pop[i]
		movies[i].GDPPerCapitaRank = perCapita[i]
	}

	var countries []string
	counts := make(map[string]int)
	for _, m := range movies {
		if _, ok := counts[m.Country]; !ok {
			countries = append(countries, m.Country)
		}
		counts[m.Country]++
	}
	values := make([]float64, len(countries))
	for i, c := range countries {
		values[i] = float64(counts[c])
	}
	ranks := make(map[string]int, len(countries))
	for i, r := range rank.MinDescending(values) {
		ranks[countries[i]] = r
	}
	for i := range movies {
		movies[i].MovieCount = counts[movies[i].Country]
		movies[i].RankMovieCount = ranks[movies[i].Country]
	}
}

// denseOrUnknown dense-ranks the known values of field in descending order.
// Rows with an unknown value get the unknown rank.
func (j *Joiner) denseOrUnknown(movies []model.Movie, field func(model.Movie) model.Metric) []int {
	out := make([]int, len(movies))
	var idx []int
	var known []float64
	for i, m := range movies {
		v := field(m)
		if !v.Known {
			out[i] = j.unknownRank
			continue
		}
		idx = append(idx, i)
		known = append(known, v.Value)
	}
	for k, r := range rank.DenseDescending(known) {
		out[idx[k]] = r
	}
	return out
}
