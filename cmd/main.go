// Command cinerank ranks countries and directors from IMDb datasets joined
// with GDP and population reference data.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	app "github.com/okian/cinerank/internal/app"
	"github.com/okian/cinerank/internal/config"
	"github.com/okian/cinerank/internal/domain/scoring"
	"github.com/okian/cinerank/pkg/logger"
	"github.com/okian/cinerank/pkg/metrics"
)

var errUsage = errors.New("usage")

var requiredFlags = []string{
	"title_akas", "title_crew", "title_ratings", "title_basics", "GDP", "start_year", "end_year",
}

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cinerank: "+err.Error())
		os.Exit(1)
	}
}

// run parses args, loads configuration and executes one pipeline run.
// Leaderboards go to stdout; logs and usage go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("cinerank", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var in app.Inputs
	fs.StringVar(&in.TitleAkas, "title_akas", "", "path to title.akas.tsv")
	fs.StringVar(&in.TitleCrew, "title_crew", "", "path to title.crew.tsv")
	fs.StringVar(&in.TitleRatings, "title_ratings", "", "path to title.ratings.tsv")
	fs.StringVar(&in.TitleBasics, "title_basics", "", "path to title.basics.tsv")
	fs.StringVar(&in.GDP, "GDP", "", "path to the GDP by country CSV")
	fs.IntVar(&in.StartYear, "start_year", 0, "first release year, inclusive")
	fs.IntVar(&in.EndYear, "end_year", 0, "last release year, inclusive")
	var (
		configPath  = fs.String("config", "", "YAML config file (default: $CINERANK_CONFIG)")
		metricsFile = fs.String("metrics_file", "", "write run metrics in Prometheus text format to this file")
		cpuProfile  = fs.String("cpuprofile", "", "write a CPU profile to this file")
		logLevel    = fs.String("log_level", "", "debug, info, warn or error")
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	var missing []string
	for _, name := range requiredFlags {
		if !set[name] {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		fs.Usage()
		return fmt.Errorf("%w: missing required flags %s", errUsage, strings.Join(missing, ", "))
	}
	if in.StartYear > in.EndYear {
		return fmt.Errorf("%w: --start_year %d is after --end_year %d", errUsage, in.StartYear, in.EndYear)
	}

	// Load configuration (defaults -> optional file -> env -> flags)
	cfg, err := config.LoadFile(ctx, *configPath)
	if err != nil {
		return err
	}
	if *metricsFile != "" {
		cfg.MetricsFile = *metricsFile
	}
	if *cpuProfile != "" {
		cfg.CPUProfile = *cpuProfile
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.InitWithWriter(stderr); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Get()

	if cfg.CPUProfile != "" {
		stopProfile, perr := startCPUProfile(cfg.CPUProfile)
		if perr != nil {
			return perr
		}
		defer func() {
			if serr := stopProfile(); serr != nil && err == nil {
				err = serr
			}
		}()
	}

	m := metrics.Default()
	if cfg.MetricsFile != "" {
		defer func() {
			if werr := m.WriteTextfile(cfg.MetricsFile); werr != nil {
				log.Error(ctx, "failed to write metrics", logger.String("path", cfg.MetricsFile), logger.Error(werr))
				if err == nil {
					err = werr
				}
			}
		}()
	}

	pipeline := app.New(
		app.WithLogger(log),
		app.WithMetrics(m),
		app.WithTopMoviesPerCountry(cfg.TopMoviesPerCountry),
		app.WithBoardLimits(cfg.CountryLimit, cfg.DirectorLimit),
		app.WithUnknownRank(cfg.UnknownRank),
		app.WithScoring(
			scoring.WithGDPRankOffset(cfg.GDPRankOffset),
			scoring.WithDirectorThresholds(cfg.DirectorMinFilms, cfg.DirectorTopRank),
			scoring.WithDefaultVariance(cfg.DirectorDefaultVariance),
			scoring.WithSplitDirectors(cfg.SplitDirectors),
		),
	)
	_, err = pipeline.Execute(ctx, in, stdout)
	return err
}

// startCPUProfile begins CPU profiling into path. The returned func stops
// profiling and closes the file.
func startCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("start cpu profile: %w", err)
	}
	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}
