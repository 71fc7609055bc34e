// Package region decides which country produced each movie, based on the
// regions where alternate (non-original) titles of the movie were released.
package region

import (
	"sort"

	"github.com/okian/cinerank/internal/domain/model"
)

type titleKey struct {
	id    string
	title string
}

// FindMovieRegions restricts akas to rated titles and pairs every original
// title with the alternate titles of the same movie carrying the same text.
// It returns one entry per (title id, title) pair that has at least one such
// alternate, ordered by title id then title. Region codes are kept as given:
// a null marker takes part in the vote like any other code and later maps to
// model.International.
func FindMovieRegions(akas []model.TitleAka, ratings []model.Rating) []model.MovieRegion {
	rated := make(map[string]struct{}, len(ratings))
	for _, r := range ratings {
		rated[r.TConst] = struct{}{}
	}

	originals := make(map[titleKey]struct{})
	alternates := make(map[titleKey][]string)
	matched := make(map[titleKey]bool)
	for _, a := range akas {
		if _, ok := rated[a.TitleID]; !ok {
			continue
		}
		k := titleKey{id: a.TitleID, title: a.Title}
		switch a.Kind {
		case model.KindOriginal:
			originals[k] = struct{}{}
		case model.KindAlternate:
			matched[k] = true
			alternates[k] = append(alternates[k], a.Region)
		}
	}

	out := make([]model.MovieRegion, 0, len(originals))
	for k := range originals {
		if !matched[k] {
			continue
		}
		out = append(out, model.MovieRegion{TitleID: k.id, Title: k.title, Regions: alternates[k]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TitleID != out[j].TitleID {
			return out[i].TitleID < out[j].TitleID
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// MostFrequent returns the most common region. When the two most common
// regions are equally frequent it returns model.International. An empty list
// reports false.
func MostFrequent(regions []string) (string, bool) {
	if len(regions) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(regions))
	for _, r := range regions {
		counts[r]++
	}
	best, bestN, tied := "", 0, false
	for r, n := range counts {
		switch {
		case n > bestN:
			best, bestN, tied = r, n, false
		case n == bestN:
			tied = true
		}
	}
	if tied {
		return model.International, true
	}
	return best, true
}

// Decide returns mr with Region set: the only region when there is exactly
// one, otherwise the most frequent one. An empty list leaves Region empty.
func Decide(mr model.MovieRegion) model.MovieRegion {
	if len(mr.Regions) == 1 {
		mr.Region = mr.Regions[0]
		return mr
	}
	mr.Region, _ = MostFrequent(mr.Regions)
	return mr
}

// DecideAll maps Decide over movies into a new slice.
func DecideAll(movies []model.MovieRegion) []model.MovieRegion {
	out := make([]model.MovieRegion, len(movies))
	for i, mr := range movies {
		out[i] = Decide(mr)
	}
	return out
}
