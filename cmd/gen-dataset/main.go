// Command gen-dataset writes a synthetic IMDb dataset with a matching GDP
// table, and can run the ranking pipeline over it to check the leaderboards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/cinerank/internal/app"
	"github.com/okian/cinerank/internal/synthetic"
	"github.com/okian/cinerank/pkg/logger"
)

const defaultTimeout = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gen-dataset: "+err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	def := synthetic.DefaultConfig()
	fs := flag.NewFlagSet("gen-dataset", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cfg synthetic.Config
	fs.StringVar(&cfg.Dir, "dir", "", "output directory for the generated files")
	fs.IntVar(&cfg.Movies, "movies", def.Movies, "number of titles to generate")
	fs.IntVar(&cfg.Directors, "directors", def.Directors, "size of the director pool")
	fs.IntVar(&cfg.StartYear, "start_year", def.StartYear, "first year of the generated range")
	fs.IntVar(&cfg.EndYear, "end_year", def.EndYear, "last year of the generated range")
	fs.Uint64Var(&cfg.Seed, "seed", def.Seed, "random seed")
	var (
		pipeline = fs.Bool("run", false, "run the pipeline over the dataset and verify the leaderboards")
		verbose  = fs.Bool("verbose", false, "enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := logger.InitWithWriter(stderr); err != nil {
		return err
	}
	if *verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return err
		}
	}

	var p *app.Pipeline
	if *pipeline {
		p = app.New()
	}
	_, _, err := synthetic.Run(ctx, cfg, p, stdout)
	return err
}
