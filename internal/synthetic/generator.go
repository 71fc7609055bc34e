package synthetic

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/cinerank/internal/app"
	"github.com/okian/cinerank/internal/domain/model"
)

// ErrInvalidConfig is returned when a generation config cannot produce a dataset.
var ErrInvalidConfig = errors.New("invalid dataset config")

// pcgStream is the second PCG word; the seed alone selects the dataset.
const pcgStream = 0x9e3779b97f4a7c15

// Dataset describes a generated set of input files.
type Dataset struct {
	Dir   string
	Start int
	End   int
	Stats Stats
}

// Inputs returns pipeline inputs pointing at the generated files.
func (d Dataset) Inputs() app.Inputs {
	return app.Inputs{
		TitleAkas:    filepath.Join(d.Dir, fileAkas),
		TitleCrew:    filepath.Join(d.Dir, fileCrew),
		TitleRatings: filepath.Join(d.Dir, fileRatings),
		TitleBasics:  filepath.Join(d.Dir, fileBasics),
		GDP:          filepath.Join(d.Dir, fileGDP),
		StartYear:    d.Start,
		EndYear:      d.End,
	}
}

// Validate checks that cfg can produce a dataset.
func (cfg Config) Validate() error {
	switch {
	case cfg.Dir == "":
		return fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	case cfg.Movies < 1:
		return fmt.Errorf("%w: movies must be positive, got %d", ErrInvalidConfig, cfg.Movies)
	case cfg.Directors < 1:
		return fmt.Errorf("%w: directors must be positive, got %d", ErrInvalidConfig, cfg.Directors)
	case cfg.StartYear > cfg.EndYear:
		return fmt.Errorf("%w: start year %d after end year %d", ErrInvalidConfig, cfg.StartYear, cfg.EndYear)
	}
	return nil
}

// tsvFile is one output table being written.
type tsvFile struct {
	f *os.File
	w *bufio.Writer
}

func createTSV(dir, name string, header ...string) (*tsvFile, error) {
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	t := &tsvFile{f: f, w: bufio.NewWriter(f)}
	t.row(header...)
	return t, nil
}

func (t *tsvFile) row(fields ...string) {
	_, _ = t.w.WriteString(strings.Join(fields, "\t"))
	_ = t.w.WriteByte('\n')
}

func (t *tsvFile) close() error {
	return errors.Join(t.w.Flush(), t.f.Close())
}

// generator draws every random value of a dataset from one source.
type generator struct {
	cfg       Config
	rnd       *rand.Rand
	zipf      *rand.Zipf
	weightSum int
	stats     Stats
}

// Generate writes a deterministic dataset into cfg.Dir. Equal configs give
// byte-identical files.
func Generate(ctx context.Context, cfg Config) (Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return Dataset{}, err
	}
	if err := os.MkdirAll(cfg.Dir, directoryPermission); err != nil {
		return Dataset{}, fmt.Errorf("create %s: %w", cfg.Dir, err)
	}

	rnd := rand.New(rand.NewPCG(cfg.Seed, pcgStream))
	g := &generator{
		cfg:  cfg,
		rnd:  rnd,
		zipf: rand.NewZipf(rnd, directorZipfS, directorZipfV, uint64(cfg.Directors-1)),
	}
	for _, c := range countries {
		g.weightSum += c.weight
	}

	if err := g.writeTitles(ctx); err != nil {
		return Dataset{}, err
	}
	if err := writeGDP(cfg.Dir); err != nil {
		return Dataset{}, err
	}
	return Dataset{Dir: cfg.Dir, Start: cfg.StartYear, End: cfg.EndYear, Stats: g.stats}, nil
}

func (g *generator) writeTitles(ctx context.Context) (err error) {
	files := make([]*tsvFile, 0, 4)
	open := func(name string, header ...string) *tsvFile {
		if err != nil {
			return nil
		}
		var t *tsvFile
		if t, err = createTSV(g.cfg.Dir, name, header...); err == nil {
			files = append(files, t)
		}
		return t
	}
	akas := open(fileAkas, "titleId", "ordering", "title", "region", "language", "types", "attributes", "isOriginalTitle")
	basics := open(fileBasics, "tconst", "titleType", "primaryTitle", "originalTitle", "isAdult", "startYear", "endYear", "runtimeMinutes", "genres")
	ratings := open(fileRatings, "tconst", "averageRating", "numVotes")
	crew := open(fileCrew, "tconst", "directors", "writers")
	defer func() {
		for _, f := range files {
			err = errors.Join(err, f.close())
		}
	}()
	if err != nil {
		return err
	}

	for i := range g.cfg.Movies {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		id := fmt.Sprintf("tt%07d", i+1)
		title := fmt.Sprintf("Synthetic Picture %d", i+1)

		basics.row(id, "movie", title, title, "0", g.year(), model.NullMarker, strconv.Itoa(80+g.rnd.IntN(80)), "Drama")
		g.writeAkas(akas, id, title)
		if g.rnd.Float64() < probRated {
			ratings.row(id, g.rating(), strconv.Itoa(g.votes()))
			g.stats.Rated++
		}
		if g.rnd.Float64() < probCrew {
			crew.row(id, g.directors(), model.NullMarker)
			g.stats.WithCrew++
		}
		g.stats.Movies++
	}
	return nil
}

func (g *generator) year() string {
	if g.rnd.Float64() < probUnknownYear {
		g.stats.UnknownYear++
		return model.NullMarker
	}
	span := g.cfg.EndYear - g.cfg.StartYear + 1 + 2*yearMargin
	return strconv.Itoa(g.cfg.StartYear - yearMargin + g.rnd.IntN(span))
}

// writeAkas writes the original title, releases of it under the same text,
// and one translated release that never counts towards the region vote.
func (g *generator) writeAkas(akas *tsvFile, id, title string) {
	home := g.country()
	ordering := 1
	emit := func(text, region, original string) {
		akas.row(id, strconv.Itoa(ordering), text, region, model.NullMarker, model.NullMarker, model.NullMarker, original)
		ordering++
		g.stats.AkaRows++
	}

	emit(title, model.NullMarker, "1")
	if g.rnd.Float64() < probNoAlternates {
		g.stats.NoAlternates++
	} else {
		for range 1 + g.rnd.IntN(maxAlternates) {
			emit(title, g.releaseRegion(home), "0")
		}
	}
	emit(title+" (translated)", countries[g.rnd.IntN(len(countries))].code, "0")
}

func (g *generator) releaseRegion(home country) string {
	switch r := g.rnd.Float64(); {
	case r < probUnknownRegion:
		g.stats.UnknownRegion++
		return unknownRegionCode
	case r < probUnknownRegion+probPrimaryRegion:
		return home.code
	default:
		return countries[g.rnd.IntN(len(countries))].code
	}
}

func (g *generator) country() country {
	n := g.rnd.IntN(g.weightSum)
	for _, c := range countries {
		if n < c.weight {
			return c
		}
		n -= c.weight
	}
	return countries[len(countries)-1]
}

// rating is the mean of three uniforms scaled onto [1, 10], one decimal.
func (g *generator) rating() string {
	u := (g.rnd.Float64() + g.rnd.Float64() + g.rnd.Float64()) / 3
	return strconv.FormatFloat(math.Round((1+9*u)*10)/10, 'f', 1, 64)
}

// votes is log-uniform so a few titles dominate the vote counts.
func (g *generator) votes() int {
	return 5 + int(math.Exp(g.rnd.Float64()*maxLogVotes))
}

func (g *generator) directors() string {
	switch r := g.rnd.Float64(); {
	case r < probNoDirector:
		return model.NullMarker
	case r < probNoDirector+probTwoDirectors:
		a, b := g.director(), g.director()
		if a == b {
			return a
		}
		return a + "," + b
	default:
		return g.director()
	}
}

func (g *generator) director() string {
	return fmt.Sprintf("nm%07d", g.zipf.Uint64()+1)
}

// writeGDP writes the GDP table in the World Bank layout: rank order by GDP,
// quoted values with thousands separators.
func writeGDP(dir string) error {
	var b strings.Builder
	b.WriteString("Country/Territory,UN Region,GDP(US$million)\n")
	for _, c := range countries {
		fmt.Fprintf(&b, "%q,%q,%q\n", c.name, "World", withSeparators(int64(c.gdp)))
	}
	if err := os.WriteFile(filepath.Join(dir, fileGDP), []byte(b.String()), filePermission); err != nil {
		return fmt.Errorf("create %s: %w", fileGDP, err)
	}
	return nil
}

func withSeparators(v int64) string {
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
