// Package app runs the ranking pipeline: load, filter by year, resolve
// regions, enrich, score and report.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cinerank/internal/adapters/reference"
	"github.com/okian/cinerank/internal/adapters/report"
	"github.com/okian/cinerank/internal/adapters/repository"
	"github.com/okian/cinerank/internal/adapters/source"
	"github.com/okian/cinerank/internal/domain/enrich"
	"github.com/okian/cinerank/internal/domain/filter"
	"github.com/okian/cinerank/internal/domain/model"
	"github.com/okian/cinerank/internal/domain/region"
	"github.com/okian/cinerank/internal/domain/scoring"
	"github.com/okian/cinerank/pkg/logger"
	"github.com/okian/cinerank/pkg/metrics"
)

// Stage names used in logs and metrics.
const (
	stageLoad    = "load"
	stageFilter  = "year_filter"
	stageRegions = "regions"
	stageEnrich  = "enrich"
	stageRank    = "rank"
	stageReport  = "report"
)

// Board names used in metrics.
const (
	boardTopMovies  = "top_movies"
	boardCumulative = "cumulative_weighted"
	boardDirectors  = "directors"
)

// Inputs names the input files and the inclusive year range.
type Inputs struct {
	TitleAkas    string
	TitleCrew    string
	TitleRatings string
	TitleBasics  string
	GDP          string

	StartYear int
	EndYear   int
}

// Validate checks that every path is set and the range is ordered.
func (in Inputs) Validate() error {
	for _, f := range []struct{ name, path string }{
		{"title_akas", in.TitleAkas},
		{"title_crew", in.TitleCrew},
		{"title_ratings", in.TitleRatings},
		{"title_basics", in.TitleBasics},
		{"GDP", in.GDP},
	} {
		if f.path == "" {
			return fmt.Errorf("%w: %s", ErrMissingInput, f.name)
		}
	}
	if in.StartYear > in.EndYear {
		return fmt.Errorf("%w: %d > %d", ErrInvalidYearRange, in.StartYear, in.EndYear)
	}
	return nil
}

// Result is the outcome of one run.
type Result struct {
	RunID        string
	Movies       int
	Stats        enrich.Stats
	Leaderboards report.Leaderboards
}

// Pipeline runs the stages in order. A failed stage aborts the run.
type Pipeline struct {
	logger  logger.Logger
	metrics *metrics.Manager

	names       region.NameLookup
	populations enrich.PopulationLookup

	topMovies     int
	countryLimit  int
	directorLimit int
	unknownRank   int
	scoring       []scoring.Option
}

// New constructs a Pipeline with default configuration.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		metrics:       metrics.Default(),
		topMovies:     250,
		countryLimit:  50,
		directorLimit: 15,
		unknownRank:   enrich.DefaultUnknownRank,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute runs the pipeline and writes the leaderboards to out.
func (p *Pipeline) Execute(ctx context.Context, in Inputs, out io.Writer) (*Result, error) {
	res, err := p.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	log := p.runLogger(res.RunID)
	err = p.stage(ctx, log, stageReport, func() error {
		return report.New(out).Write(res.Leaderboards)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Run computes the leaderboards without printing them.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := p.ensureLookups(); err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString()}
	log := p.runLogger(res.RunID)
	p.metrics.RecordRunStarted()
	log.Info(ctx, "run started",
		logger.Int("start_year", in.StartYear),
		logger.Int("end_year", in.EndYear),
	)
	start := time.Now()

	var (
		tables filter.Tables
		gdp    source.GDPTable
	)
	err := p.stage(ctx, log, stageLoad, func() error {
		var err error
		tables, gdp, err = p.load(ctx, log, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, log, stageFilter, func() error {
		tables = filter.Years(tables, in.StartYear, in.EndYear)
		p.metrics.UpdateRowsRetained(stageFilter, len(tables.Basics))
		log.Info(ctx, "titles in year range",
			logger.Int("basics", len(tables.Basics)),
			logger.Int("akas", len(tables.Akas)),
			logger.Int("ratings", len(tables.Ratings)),
			logger.Int("crew", len(tables.Crew)),
		)
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}

	var regions []model.MovieRegion
	err = p.stage(ctx, log, stageRegions, func() error {
		regions = region.DecideAll(region.FindMovieRegions(tables.Akas, tables.Ratings))
		p.metrics.UpdateRowsRetained(stageRegions, len(regions))
		log.Info(ctx, "regions resolved", logger.Int("movies", len(regions)))
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}

	var movies []model.Movie
	err = p.stage(ctx, log, stageEnrich, func() error {
		joiner := enrich.New(
			enrich.WithCountryNames(p.names),
			enrich.WithPopulations(p.populations),
			enrich.WithUnknownRank(p.unknownRank),
		)
		movies, res.Stats = joiner.Build(ctx, enrich.Inputs{
			Regions: regions,
			GDP:     gdp.Rows,
			Ratings: tables.Ratings,
			Crew:    tables.Crew,
		})
		p.recordStats(ctx, log, res.Stats)
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}
	res.Movies = len(movies)

	err = p.stage(ctx, log, stageRank, func() error {
		var err error
		res.Leaderboards, err = p.rank(ctx, movies)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.metrics.MarkRunSucceeded()
	log.Info(ctx, "run finished",
		logger.Int("movies", res.Movies),
		logger.Int("countries", len(res.Leaderboards.TopMovies)),
		logger.Int("directors", len(res.Leaderboards.Directors)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (p *Pipeline) load(ctx context.Context, log logger.Logger, in Inputs) (filter.Tables, source.GDPTable, error) {
	var t filter.Tables
	var err error

	if t.Akas, err = source.LoadAkas(ctx, in.TitleAkas); err != nil {
		return t, source.GDPTable{}, err
	}
	p.metrics.RecordRowsLoaded("akas", len(t.Akas))

	if t.Crew, err = source.LoadCrew(ctx, in.TitleCrew); err != nil {
		return t, source.GDPTable{}, err
	}
	p.metrics.RecordRowsLoaded("crew", len(t.Crew))

	if t.Ratings, err = source.LoadRatings(ctx, in.TitleRatings); err != nil {
		return t, source.GDPTable{}, err
	}
	p.metrics.RecordRowsLoaded("ratings", len(t.Ratings))

	if t.Basics, err = source.LoadBasics(ctx, in.TitleBasics); err != nil {
		return t, source.GDPTable{}, err
	}
	p.metrics.RecordRowsLoaded("basics", len(t.Basics))

	gdp, err := source.LoadGDP(ctx, in.GDP)
	if err != nil {
		return t, source.GDPTable{}, err
	}
	p.metrics.RecordRowsLoaded("gdp", len(gdp.Rows))
	if gdp.Fallback() {
		p.metrics.RecordEncodingFallback(gdp.Encoding)
		log.Warn(ctx, "GDP file is not UTF-8", logger.String("encoding", gdp.Encoding))
	}

	log.Info(ctx, "tables loaded",
		logger.Int("akas", len(t.Akas)),
		logger.Int("crew", len(t.Crew)),
		logger.Int("ratings", len(t.Ratings)),
		logger.Int("basics", len(t.Basics)),
		logger.Int("gdp", len(gdp.Rows)),
	)
	return t, gdp, nil
}

func (p *Pipeline) recordStats(ctx context.Context, log logger.Logger, st enrich.Stats) {
	p.metrics.UpdateRowsRetained(stageEnrich, st.Movies)
	p.metrics.RecordLookupMisses("country", st.CountryMisses)
	p.metrics.RecordLookupMisses("gdp", st.GDPMisses)
	p.metrics.RecordLookupMisses("population", st.PopulationMisses)
	p.metrics.RecordJoinDuplicates("titles", st.DuplicateTitles)
	p.metrics.RecordJoinDuplicates("gdp", st.DuplicateGDP)
	p.metrics.RecordJoinDuplicates("ratings", st.DuplicateRatings)
	p.metrics.RecordJoinDuplicates("crew", st.DuplicateCrew)

	log.Info(ctx, "movies enriched",
		logger.Int("movies", st.Movies),
		logger.Int("without_rating", st.WithoutRating),
		logger.Int("without_crew", st.WithoutCrew),
	)
	log.Debug(ctx, "reference lookups missed",
		logger.Int("country", st.CountryMisses),
		logger.Int("gdp", st.GDPMisses),
		logger.Int("population", st.PopulationMisses),
	)
}

func (p *Pipeline) rank(ctx context.Context, movies []model.Movie) (report.Leaderboards, error) {
	lb := report.Leaderboards{MoviesPerCountry: p.topMovies}
	engine := scoring.New(p.scoring...)

	top := repository.NewBoard[model.CountryScore](repository.WithName(boardTopMovies), repository.WithMetrics(p.metrics))
	for _, cs := range scoring.TopMoviesAverage(movies, p.topMovies) {
		if err := top.Put(ctx, cs.Country, cs.Score, cs); err != nil {
			return lb, err
		}
	}
	lb.TopMovies = top.All(ctx)

	cumulative := repository.NewBoard[model.CountryScore](repository.WithName(boardCumulative), repository.WithMetrics(p.metrics))
	for _, cs := range engine.CumulativeWeighted(movies) {
		if err := cumulative.Put(ctx, cs.Country, cs.Score, cs); err != nil {
			return lb, err
		}
	}
	var err error
	if lb.Cumulative, err = cumulative.TopN(ctx, p.countryLimit); err != nil {
		return lb, err
	}

	directors := repository.NewBoard[model.DirectorStat](repository.WithName(boardDirectors), repository.WithMetrics(p.metrics))
	for _, d := range engine.DirectorStats(movies) {
		if err := directors.Put(ctx, d.Director, d.Rating, d); err != nil {
			return lb, err
		}
	}
	if lb.Directors, err = directors.TopN(ctx, p.directorLimit); err != nil {
		return lb, err
	}
	return lb, nil
}

// stage runs fn, timing and logging it. Failures are counted and wrapped
// with the stage name.
func (p *Pipeline) stage(ctx context.Context, log logger.Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.metrics.RecordStageDuration(name, float64(elapsed.Milliseconds()))
	if err != nil {
		p.metrics.RecordRunFailure(name)
		log.Error(ctx, "stage failed", logger.String("stage", name), logger.Duration("elapsed", elapsed), logger.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Info(ctx, "stage done", logger.String("stage", name), logger.Duration("elapsed", elapsed))
	return nil
}

func (p *Pipeline) runLogger(runID string) logger.Logger {
	if p.logger == nil {
		p.logger = logger.Get()
	}
	return p.logger.Named("pipeline").With(logger.String("run_id", runID))
}

// ensureLookups falls back to the embedded reference tables.
func (p *Pipeline) ensureLookups() error {
	if p.names != nil && p.populations != nil {
		return nil
	}
	table, err := reference.Default()
	if err != nil {
		return err
	}
	if p.names == nil {
		p.names = table.Countries()
	}
	if p.populations == nil {
		p.populations = table.Populations()
	}
	return nil
}
