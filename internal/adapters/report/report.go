// Package report renders the computed leaderboards as text tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/okian/cinerank/internal/adapters/repository"
	"github.com/okian/cinerank/internal/domain/model"
)

const defaultPrecision = 4

// Leaderboards are the three boards of one run, already cut to their print limits.
type Leaderboards struct {
	TopMovies  []repository.Entry[model.CountryScore]
	Cumulative []repository.Entry[model.CountryScore]
	Directors  []repository.Entry[model.DirectorStat]

	// MoviesPerCountry is the number of best rated movies averaged per country.
	MoviesPerCountry int
}

// Writer prints leaderboards.
type Writer struct {
	out       io.Writer
	precision int
}

// Option configures a Writer.
type Option func(*Writer)

// WithPrecision sets the number of decimals printed for scores.
func WithPrecision(p int) Option {
	return func(w *Writer) {
		if p >= 0 {
			w.precision = p
		}
	}
}

// New creates a Writer printing to out.
func New(out io.Writer, opts ...Option) *Writer {
	w := &Writer{out: out, precision: defaultPrecision}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write prints the three boards in fixed order: top movies average,
// cumulative weighted score, director ratings.
func (w *Writer) Write(lb Leaderboards) error {
	title := "Average rating of the best movies per country"
	if lb.MoviesPerCountry > 0 {
		title = fmt.Sprintf("Average rating of the top %d movies per country", lb.MoviesPerCountry)
	}
	rows := make([][]string, len(lb.TopMovies))
	for i, e := range lb.TopMovies {
		rows[i] = []string{strconv.Itoa(e.Rank), e.Item.Country, w.num(e.Score)}
	}
	if err := w.table(title, []string{"Rank", "Country", "Average rating"}, rows); err != nil {
		return err
	}

	rows = make([][]string, len(lb.Cumulative))
	for i, e := range lb.Cumulative {
		rows[i] = []string{strconv.Itoa(e.Rank), e.Item.Country, w.num(e.Score)}
	}
	if err := w.table("Cumulative weighted rating per country", []string{"Rank", "Country", "Weighted rating"}, rows); err != nil {
		return err
	}

	rows = make([][]string, len(lb.Directors))
	for i, e := range lb.Directors {
		d := e.Item
		rows[i] = []string{
			strconv.Itoa(e.Rank), d.Director, strconv.Itoa(d.Films),
			w.num(d.MeanRating), w.num(d.RatingVariance), w.num(d.Rating),
		}
	}
	return w.table("Director ratings", []string{"Rank", "Director", "Films", "Mean rating", "Rating variance", "Rating"}, rows)
}

func (w *Writer) table(title string, header []string, rows [][]string) error {
	if _, err := fmt.Fprintf(w.out, "%s\n", title); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	t := tablewriter.NewWriter(w.out)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.AppendBulk(rows)
	t.Render()
	if _, err := fmt.Fprintln(w.out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (w *Writer) num(v float64) string {
	return strconv.FormatFloat(v, 'f', w.precision, 64)
}
