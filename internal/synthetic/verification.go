package synthetic

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/cinerank/internal/adapters/repository"
	"github.com/okian/cinerank/internal/app"
	"github.com/okian/cinerank/internal/domain/model"
)

// ErrInconsistent is returned when a leaderboard breaks its ordering or
// disagrees with the movies it was built from.
var ErrInconsistent = errors.New("inconsistent leaderboard")

const tolerance = 1e-9

// Verify checks the leaderboards of a run against each other. Every problem
// found is reported.
func Verify(ctx context.Context, res *app.Result) error {
	lb := res.Leaderboards
	var errs []error
	if res.Movies > 0 && len(lb.TopMovies) == 0 {
		errs = append(errs, fmt.Errorf("top movies: empty board for %d movies", res.Movies))
	}
	errs = append(errs, verifyBoard(ctx, "top movies", lb.TopMovies, countryKey)...)
	errs = append(errs, verifyBoard(ctx, "cumulative", lb.Cumulative, countryKey)...)
	errs = append(errs, verifyBoard(ctx, "directors", lb.Directors, func(d model.DirectorStat) string { return d.Director })...)

	top := make(map[string]struct{}, len(lb.TopMovies))
	for _, e := range lb.TopMovies {
		top[e.Key] = struct{}{}
		if e.Score < 1-tolerance || e.Score > 10+tolerance {
			errs = append(errs, fmt.Errorf("top movies: %q average %.4f outside [1, 10]", e.Key, e.Score))
		}
	}
	for _, e := range lb.Cumulative {
		if _, ok := top[e.Key]; !ok {
			errs = append(errs, fmt.Errorf("cumulative: country %q missing from top movies", e.Key))
		}
	}
	for _, e := range lb.Directors {
		d := e.Item
		if d.Films < 1 {
			errs = append(errs, fmt.Errorf("directors: %q has %d films", d.Director, d.Films))
		}
		if want := d.MeanRating - math.Sqrt(d.RatingVariance); math.Abs(want-d.Rating) > tolerance {
			errs = append(errs, fmt.Errorf("directors: %q rating %.6f, want %.6f", d.Director, d.Rating, want))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInconsistent, errors.Join(errs...))
}

func countryKey(c model.CountryScore) string { return c.Country }

// verifyBoard checks ordering and key uniqueness, and replays the entries
// into a fresh board whose ranks must match the reported ones. A board cut to
// its top entries keeps the ranks it had in full.
func verifyBoard[T any](ctx context.Context, name string, board []repository.Entry[T], key func(T) string) []error {
	var errs []error
	var replay repository.Store[T] = repository.NewBoard[T](repository.WithName(name))
	unique := 0
	for i, e := range board {
		if e.Key != key(e.Item) {
			errs = append(errs, fmt.Errorf("%s: entry %d key %q does not match item %q", name, i, e.Key, key(e.Item)))
		}
		if i > 0 && e.Score > board[i-1].Score {
			errs = append(errs, fmt.Errorf("%s: entry %d scores higher than entry %d", name, i, i-1))
		}
		switch err := replay.Put(ctx, e.Key, e.Score, e.Item); {
		case errors.Is(err, repository.ErrDuplicateKey):
			errs = append(errs, fmt.Errorf("%s: duplicate key %q", name, e.Key))
		case err != nil:
			return append(errs, fmt.Errorf("%s: %w", name, err))
		default:
			unique++
		}
	}
	if n := replay.Count(ctx); n != unique {
		errs = append(errs, fmt.Errorf("%s: replayed %d keys, board holds %d", name, unique, n))
	}

	for i, e := range board {
		want, err := replay.Rank(ctx, e.Key)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q: %w", name, e.Key, err))
			continue
		}
		if e.Rank != want.Rank {
			errs = append(errs, fmt.Errorf("%s: entry %d (%q) has rank %d, want %d", name, i, e.Key, e.Rank, want.Rank))
		}
	}
	return errs
}
