// Package reference provides the static lookup tables consulted by the
// pipeline: region code to country name, and region code to population.
package reference

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// ErrMalformedTable reports a reference row that cannot be parsed.
var ErrMalformedTable = errors.New("malformed reference table")

//go:embed data/countries.tsv
var countriesTSV []byte

// MapLookup is a read-only lookup keyed by upper-case region code.
type MapLookup[T any] map[string]T

// Lookup returns the value for code. Codes are matched case-insensitively.
func (m MapLookup[T]) Lookup(code string) (T, bool) {
	v, ok := m[strings.ToUpper(strings.TrimSpace(code))]
	return v, ok
}

// Table holds both reference lookups built from one country listing.
type Table struct {
	names       MapLookup[string]
	populations MapLookup[float64]
}

// Countries returns the code to country name lookup.
func (t *Table) Countries() MapLookup[string] { return t.names }

// Populations returns the code to population lookup. Codes without a known
// population are absent.
func (t *Table) Populations() MapLookup[float64] { return t.populations }

// Load parses a tab separated listing of code, name and optional population.
// Blank lines and lines starting with '#' are skipped.
func Load(r io.Reader) (*Table, error) {
	t := &Table{
		names:       make(MapLookup[string]),
		populations: make(MapLookup[float64]),
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if len(strings.TrimSpace(text)) == 0 || text[0] == '#' {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < 2 || fields[0] == "" {
			return nil, fmt.Errorf("%w: line %d: want code and name", ErrMalformedTable, line)
		}
		code := strings.ToUpper(strings.TrimSpace(fields[0]))
		t.names[code] = strings.TrimSpace(fields[1])

		if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
			pop, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: population %q", ErrMalformedTable, line, fields[2])
			}
			t.populations[code] = float64(pop)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reference table: %w", err)
	}
	return t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the table built from the embedded country listing.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Load(bytes.NewReader(countriesTSV))
	})
	return defaultTable, defaultErr
}
