// Package filter restricts the movie tables to a start-year range.
package filter

import (
	"strconv"
	"strings"

	"github.com/okian/cinerank/internal/domain/model"
)

// Tables groups the four movie tables that travel through the year filter.
type Tables struct {
	Akas    []model.TitleAka
	Crew    []model.Crew
	Ratings []model.Rating
	Basics  []model.TitleBasics
}

// ParseYear coerces a raw start year. Non-numeric values report false.
func ParseYear(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == model.NullMarker {
		return 0, false
	}
	y, err := strconv.ParseFloat(raw, 64)
	if err != nil || y != y {
		return 0, false
	}
	return y, true
}

// Years keeps basics rows whose numeric start year lies in [start, end] and
// restricts akas, crew and ratings to the surviving identifiers. The input
// slices are not modified.
func Years(in Tables, start, end int) Tables {
	out := Tables{}
	valid := make(map[string]struct{})
	for _, b := range in.Basics {
		y, ok := ParseYear(b.StartYear)
		if !ok || y < float64(start) || y > float64(end) {
			continue
		}
		out.Basics = append(out.Basics, b)
		valid[b.TConst] = struct{}{}
	}

	for _, a := range in.Akas {
		if _, ok := valid[a.TitleID]; ok {
			out.Akas = append(out.Akas, a)
		}
	}
	for _, c := range in.Crew {
		if _, ok := valid[c.TConst]; ok {
			out.Crew = append(out.Crew, c)
		}
	}
	for _, r := range in.Ratings {
		if _, ok := valid[r.TConst]; ok {
			out.Ratings = append(out.Ratings, r)
		}
	}
	return out
}
