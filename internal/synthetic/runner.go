package synthetic

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/okian/cinerank/internal/app"
	"github.com/okian/cinerank/pkg/logger"
)

// Run generates a dataset and, when p is non-nil, runs the pipeline over it
// writing the report to out and verifies the leaderboards.
func Run(ctx context.Context, cfg Config, p *app.Pipeline, out io.Writer) (Dataset, *app.Result, error) {
	log := logger.Named("synthetic")
	log.Info(ctx, "generating dataset",
		logger.String("dir", cfg.Dir),
		logger.Int("movies", cfg.Movies),
		logger.Int("directors", cfg.Directors),
		logger.Int("start_year", cfg.StartYear),
		logger.Int("end_year", cfg.EndYear),
		logger.Any("seed", cfg.Seed),
	)

	start := time.Now()
	ds, err := Generate(ctx, cfg)
	if err != nil {
		return Dataset{}, nil, fmt.Errorf("dataset generation failed: %w", err)
	}
	logStats(ctx, log, ds.Stats, time.Since(start))

	if p == nil {
		return ds, nil, nil
	}

	res, err := p.Execute(ctx, ds.Inputs(), out)
	if err != nil {
		return ds, nil, fmt.Errorf("pipeline failed: %w", err)
	}
	if err := Verify(ctx, res); err != nil {
		return ds, res, fmt.Errorf("result verification failed: %w", err)
	}
	log.Info(ctx, "leaderboards verified",
		logger.String("run_id", res.RunID),
		logger.Int("movies", res.Movies),
		logger.Int("countries", len(res.Leaderboards.TopMovies)),
		logger.Int("directors", len(res.Leaderboards.Directors)),
	)
	return ds, res, nil
}

func logStats(ctx context.Context, log logger.Logger, st Stats, elapsed time.Duration) {
	log.Info(ctx, "dataset generated",
		logger.Int("movies", st.Movies),
		logger.Int("aka_rows", st.AkaRows),
		logger.Int("rated", st.Rated),
		logger.Int("with_crew", st.WithCrew),
		logger.Duration("elapsed", elapsed),
	)
	log.Debug(ctx, "dataset gaps",
		logger.Int("no_alternates", st.NoAlternates),
		logger.Int("unknown_year", st.UnknownYear),
		logger.Int("unknown_region", st.UnknownRegion),
	)
}
