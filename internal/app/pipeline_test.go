package app_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cinerank/internal/adapters/reference"
	"github.com/okian/cinerank/internal/adapters/source"
	app "github.com/okian/cinerank/internal/app"
	"github.com/okian/cinerank/internal/domain/scoring"
	"github.com/okian/cinerank/pkg/logger"
	"github.com/okian/cinerank/pkg/metrics"
)

const (
	akasTSV = "titleId\tordering\ttitle\tregion\tlanguage\ttypes\tattributes\tisOriginalTitle\n" +
		"tt1\t1\tAlpha\t\\N\t\\N\toriginal\t\\N\t1\n" +
		"tt1\t2\tAlpha\tUS\t\\N\t\\N\t\\N\t0\n" +
		"tt1\t3\tAlpha\tUS\t\\N\t\\N\t\\N\t0\n" +
		"tt1\t4\tAlpha\tGB\t\\N\t\\N\t\\N\t0\n" +
		"tt2\t1\tBeta\t\\N\t\\N\toriginal\t\\N\t1\n" +
		"tt2\t2\tBeta\tPL\t\\N\t\\N\t\\N\t0\n" +
		"tt3\t1\tGamma\t\\N\t\\N\toriginal\t\\N\t1\n" +
		"tt3\t2\tGamma\tUS\t\\N\t\\N\t\\N\t0\n" +
		"tt4\t1\tDelta\t\\N\t\\N\toriginal\t\\N\t1\n" +
		"tt4\t2\tDelta\tPL\t\\N\t\\N\t\\N\t0\n"
	basicsTSV = "tconst\ttitleType\tprimaryTitle\toriginalTitle\tisAdult\tstartYear\tendYear\truntimeMinutes\tgenres\n" +
		"tt1\tmovie\tAlpha\tAlpha\t0\t2001\t\\N\t90\tDrama\n" +
		"tt2\tmovie\tBeta\tBeta\t0\t2002\t\\N\t90\tDrama\n" +
		"tt3\tmovie\tGamma\tGamma\t0\t2003\t\\N\t90\tDrama\n" +
		"tt4\tmovie\tDelta\tDelta\t0\t1990\t\\N\t90\tDrama\n"
	ratingsTSV = "tconst\taverageRating\tnumVotes\n" +
		"tt1\t8.0\t100\n" +
		"tt2\t6.0\t50\n" +
		"tt3\t7.0\t10\n" +
		"tt4\t9.0\t1000\n"
	crewTSV = "tconst\tdirectors\twriters\n" +
		"tt1\tnm1\t\\N\n" +
		"tt2\tnm2\t\\N\n" +
		"tt3\tnm1\t\\N\n" +
		"tt4\tnm1\t\\N\n"
	gdpCSV = "Rank,Country/Territory,GDP(US$million)\n" +
		"1,United States,\"25,000,000\"\n" +
		"2,Poland,\"700,000\"\n"
)

func writeInputs(t *testing.T, ratings string) app.Inputs {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}
	return app.Inputs{
		TitleAkas:    write("title.akas.tsv", akasTSV),
		TitleBasics:  write("title.basics.tsv", basicsTSV),
		TitleRatings: write("title.ratings.tsv", ratings),
		TitleCrew:    write("title.crew.tsv", crewTSV),
		GDP:          write("gdp.csv", gdpCSV),
		StartYear:    2000,
		EndYear:      2010,
	}
}

func lookups() (reference.MapLookup[string], reference.MapLookup[float64]) {
	return reference.MapLookup[string]{"US": "United States", "PL": "Poland", "GB": "United Kingdom"},
		reference.MapLookup[float64]{"US": 330_000_000, "PL": 38_000_000}
}

func TestPipelineRun(t *testing.T) {
	Convey("Given three movies across two countries", t, func() {
		var logs bytes.Buffer
		So(logger.InitWithWriter(&logs), ShouldBeNil)

		names, pops := lookups()
		m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
		in := writeInputs(t, ratingsTSV)
		ctx := context.Background()

		newPipeline := func(opts ...app.Option) *app.Pipeline {
			base := []app.Option{
				app.WithMetrics(m),
				app.WithCountryNames(names),
				app.WithPopulations(pops),
				app.WithScoring(scoring.WithDirectorThresholds(2, 20)),
			}
			return app.New(append(base, opts...)...)
		}

		Convey("When the pipeline runs with default limits", func() {
			res, err := newPipeline().Run(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then the out-of-range title is filtered out", func() {
				So(res.Movies, ShouldEqual, 3)
				So(res.RunID, ShouldNotBeEmpty)
			})

			Convey("Then the top movies board averages every movie per country", func() {
				top := res.Leaderboards.TopMovies
				So(top, ShouldHaveLength, 2)
				So(top[0].Key, ShouldEqual, "United States")
				So(top[0].Score, ShouldAlmostEqual, 7.5)
				So(top[1].Key, ShouldEqual, "Poland")
				So(top[1].Score, ShouldAlmostEqual, 6.0)
			})

			Convey("Then the cumulative board is sorted strictly descending", func() {
				cum := res.Leaderboards.Cumulative
				So(cum, ShouldHaveLength, 2)
				us := 64*math.Sqrt(11) + 49*math.Sqrt(11)/3
				pl := 36 * math.Sqrt(12) * math.Sqrt(2) * (2.0 / 3) * math.Sqrt(2) * math.Sqrt(2)
				So(cum[0].Key, ShouldEqual, "United States")
				So(cum[0].Score, ShouldAlmostEqual, us, 1e-9)
				So(cum[1].Key, ShouldEqual, "Poland")
				So(cum[1].Score, ShouldAlmostEqual, pl, 1e-9)
				So(cum[0].Score, ShouldBeGreaterThan, cum[1].Score)
				So(cum[1].Rank, ShouldEqual, 2)
			})

			Convey("Then directors below the film threshold are excluded", func() {
				dirs := res.Leaderboards.Directors
				So(dirs, ShouldHaveLength, 1)
				So(dirs[0].Key, ShouldEqual, "nm1")
				So(dirs[0].Item.Films, ShouldEqual, 2)
				So(dirs[0].Item.MeanRating, ShouldAlmostEqual, 5.0)
				So(dirs[0].Item.RatingVariance, ShouldAlmostEqual, 1.0/6)
				So(dirs[0].Score, ShouldAlmostEqual, 5-math.Sqrt(1.0/6))
			})

			Convey("Then run metrics are recorded", func() {
				expected := `
# HELP cinerank_pipeline_rows_loaded_total Rows read from each input table
# TYPE cinerank_pipeline_rows_loaded_total counter
cinerank_pipeline_rows_loaded_total{table="akas"} 10
cinerank_pipeline_rows_loaded_total{table="basics"} 4
cinerank_pipeline_rows_loaded_total{table="crew"} 4
cinerank_pipeline_rows_loaded_total{table="gdp"} 2
cinerank_pipeline_rows_loaded_total{table="ratings"} 4
`
				So(testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "cinerank_pipeline_rows_loaded_total"), ShouldBeNil)
				So(testutil.CollectAndCount(m.Registry(), "cinerank_pipeline_leaderboard_entries"), ShouldEqual, 3)
			})

			Convey("Then every stage is logged with the run id", func() {
				out := logs.String()
				So(out, ShouldContainSubstring, "pipeline.run_id="+res.RunID)
				for _, stage := range []string{"load", "year_filter", "regions", "enrich", "rank"} {
					So(out, ShouldContainSubstring, "pipeline.stage="+stage)
				}
			})
		})

		Convey("When only the best movie per country counts", func() {
			res, err := newPipeline(app.WithTopMoviesPerCountry(1), app.WithBoardLimits(1, 1)).Run(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then averages cover one movie and boards are cut", func() {
				top := res.Leaderboards.TopMovies
				So(top[0].Score, ShouldAlmostEqual, 8.0)
				So(top[1].Score, ShouldAlmostEqual, 6.0)
				So(res.Leaderboards.Cumulative, ShouldHaveLength, 1)
				So(res.Leaderboards.MoviesPerCountry, ShouldEqual, 1)
			})
		})

		Convey("When the pipeline executes with an output", func() {
			var out bytes.Buffer
			_, err := newPipeline().Execute(ctx, in, &out)

			Convey("Then the leaderboards are printed", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "United States")
				So(out.String(), ShouldContainSubstring, "Director ratings")
				So(out.String(), ShouldContainSubstring, "nm1")
			})
		})

		Convey("When the ratings table is malformed", func() {
			bad := writeInputs(t, "tconst\taverageRating\tnumVotes\ntt1\tgood\t100\n")
			_, err := newPipeline().Run(ctx, bad)

			Convey("Then the run aborts in the load stage", func() {
				So(errors.Is(err, source.ErrMalformedValue), ShouldBeTrue)
				So(err.Error(), ShouldStartWith, "load:")
				So(testutil.CollectAndCount(m.Registry(), "cinerank_pipeline_run_failures_total"), ShouldEqual, 1)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := newPipeline().Run(cctx, in)

			Convey("Then the run stops with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestInputsValidate(t *testing.T) {
	Convey("Given pipeline inputs", t, func() {
		in := app.Inputs{
			TitleAkas: "a", TitleCrew: "c", TitleRatings: "r", TitleBasics: "b", GDP: "g",
			StartYear: 2000, EndYear: 2000,
		}

		Convey("When every path is set and the range has one year", func() {
			So(in.Validate(), ShouldBeNil)
		})

		Convey("When a path is missing", func() {
			in.GDP = ""
			err := in.Validate()
			So(errors.Is(err, app.ErrMissingInput), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "GDP")
		})

		Convey("When the range is reversed", func() {
			in.StartYear = 2001
			err := in.Validate()
			So(errors.Is(err, app.ErrInvalidYearRange), ShouldBeTrue)
		})
	})
}
