package source

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/cinerank/internal/domain/model"
)

// Column names of the IMDb exports.
const (
	colTitleID         = "titleId"
	colTitle           = "title"
	colRegion          = "region"
	colIsOriginalTitle = "isOriginalTitle"
	colTConst          = "tconst"
	colTitleType       = "titleType"
	colPrimaryTitle    = "primaryTitle"
	colStartYear       = "startYear"
	colAverageRating   = "averageRating"
	colNumVotes        = "numVotes"
	colDirectors       = "directors"
)

// ReadAkas parses title.akas.tsv.
func ReadAkas(ctx context.Context, r io.Reader) ([]model.TitleAka, error) {
	var out []model.TitleAka
	err := scanTSV(ctx, r, []string{colTitleID, colTitle, colRegion, colIsOriginalTitle}, func(rw row) error {
		out = append(out, model.TitleAka{
			TitleID: rw.get(colTitleID),
			Title:   rw.get(colTitle),
			Region:  rw.get(colRegion),
			Kind:    parseKind(rw.get(colIsOriginalTitle)),
		})
		return nil
	})
	return out, err
}

// ReadBasics parses title.basics.tsv. Only the columns the pipeline needs
// are kept; titleType and primaryTitle are optional.
func ReadBasics(ctx context.Context, r io.Reader) ([]model.TitleBasics, error) {
	var out []model.TitleBasics
	err := scanTSV(ctx, r, []string{colTConst, colStartYear}, func(rw row) error {
		b := model.TitleBasics{TConst: rw.get(colTConst), StartYear: rw.get(colStartYear)}
		if _, ok := rw.cols[colTitleType]; ok {
			b.TitleType = rw.get(colTitleType)
		}
		if _, ok := rw.cols[colPrimaryTitle]; ok {
			b.PrimaryTitle = rw.get(colPrimaryTitle)
		}
		out = append(out, b)
		return nil
	})
	return out, err
}

// ReadRatings parses title.ratings.tsv. Ratings and vote counts must be numeric.
func ReadRatings(ctx context.Context, r io.Reader) ([]model.Rating, error) {
	var out []model.Rating
	err := scanTSV(ctx, r, []string{colTConst, colAverageRating, colNumVotes}, func(rw row) error {
		avg, err := strconv.ParseFloat(strings.TrimSpace(rw.get(colAverageRating)), 64)
		if err != nil {
			return malformed(rw, colAverageRating)
		}
		votes, err := strconv.ParseInt(strings.TrimSpace(rw.get(colNumVotes)), 10, 64)
		if err != nil {
			return malformed(rw, colNumVotes)
		}
		out = append(out, model.Rating{TConst: rw.get(colTConst), AverageRating: avg, NumVotes: votes})
		return nil
	})
	return out, err
}

// ReadCrew parses title.crew.tsv.
func ReadCrew(ctx context.Context, r io.Reader) ([]model.Crew, error) {
	var out []model.Crew
	err := scanTSV(ctx, r, []string{colTConst, colDirectors}, func(rw row) error {
		out = append(out, model.Crew{TConst: rw.get(colTConst), Directors: rw.get(colDirectors)})
		return nil
	})
	return out, err
}

// LoadAkas reads title.akas.tsv from path.
func LoadAkas(ctx context.Context, path string) ([]model.TitleAka, error) {
	return loadFile(ctx, path, ReadAkas)
}

// LoadBasics reads title.basics.tsv from path.
func LoadBasics(ctx context.Context, path string) ([]model.TitleBasics, error) {
	return loadFile(ctx, path, ReadBasics)
}

// LoadRatings reads title.ratings.tsv from path.
func LoadRatings(ctx context.Context, path string) ([]model.Rating, error) {
	return loadFile(ctx, path, ReadRatings)
}

// LoadCrew reads title.crew.tsv from path.
func LoadCrew(ctx context.Context, path string) ([]model.Crew, error) {
	return loadFile(ctx, path, ReadCrew)
}

func parseKind(raw string) model.TitleKind {
	switch strings.TrimSpace(raw) {
	case "1":
		return model.KindOriginal
	case "0":
		return model.KindAlternate
	default:
		return model.KindUnflagged
	}
}

func malformed(rw row, col string) error {
	return fmt.Errorf("%w: line %d column %s: %q", ErrMalformedValue, rw.line, col, rw.get(col))
}
