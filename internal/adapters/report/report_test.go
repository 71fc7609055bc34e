package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/okian/cinerank/internal/adapters/report"
	"github.com/okian/cinerank/internal/adapters/repository"
	"github.com/okian/cinerank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWrite(t *testing.T) {
	Convey("Given three computed leaderboards", t, func() {
		lb := report.Leaderboards{
			MoviesPerCountry: 250,
			TopMovies: []repository.Entry[model.CountryScore]{
				{Rank: 1, Key: "Poland", Score: 8.25, Item: model.CountryScore{Country: "Poland", Score: 8.25}},
			},
			Cumulative: []repository.Entry[model.CountryScore]{
				{Rank: 1, Key: "Chile", Score: 1234.5, Item: model.CountryScore{Country: "Chile", Score: 1234.5}},
			},
			Directors: []repository.Entry[model.DirectorStat]{
				{Rank: 1, Key: "nm0000001", Score: 3, Item: model.DirectorStat{
					Director: "nm0000001", Films: 20, MeanRating: 4, RatingVariance: 1, Rating: 3,
				}},
			},
		}

		Convey("When they are written", func() {
			var buf bytes.Buffer
			err := report.New(&buf, report.WithPrecision(2)).Write(lb)
			So(err, ShouldBeNil)
			out := buf.String()

			Convey("Then the boards appear in fixed order", func() {
				first := strings.Index(out, "top 250 movies per country")
				second := strings.Index(out, "Cumulative weighted rating per country")
				third := strings.Index(out, "Director ratings")
				So(first, ShouldBeGreaterThanOrEqualTo, 0)
				So(second, ShouldBeGreaterThan, first)
				So(third, ShouldBeGreaterThan, second)
			})

			Convey("Then rows carry formatted values", func() {
				So(out, ShouldContainSubstring, "Poland")
				So(out, ShouldContainSubstring, "8.25")
				So(out, ShouldContainSubstring, "1234.50")
				So(out, ShouldContainSubstring, "nm0000001")
				So(out, ShouldContainSubstring, "Rating variance")
			})
		})

		Convey("When the output fails", func() {
			err := report.New(failingWriter{}).Write(lb)

			Convey("Then the error is returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "write report")
			})
		})
	})
}
