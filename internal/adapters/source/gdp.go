package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/okian/cinerank/internal/domain/model"
)

// GDP CSV columns. Any other column, including the file's own Rank, is ignored.
const (
	colCountry = "Country/Territory"
	colGDP     = "GDP(US$million)"
)

// Encoding names reported by ReadGDP.
const (
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "iso-8859-1"
	EncodingUTF8Replace = "utf-8-replace"
)

var errInvalidUTF8 = errors.New("invalid utf-8")

type gdpDecoder struct {
	name   string
	decode func([]byte) ([]byte, error)
}

// gdpDecoders are tried in order; the first that succeeds wins.
// ISO-8859-1 maps every byte, so the replacing UTF-8 decoder is only
// reached if that step is ever made strict.
var gdpDecoders = []gdpDecoder{
	{name: EncodingUTF8, decode: func(b []byte) ([]byte, error) {
		if !utf8.Valid(b) {
			return nil, errInvalidUTF8
		}
		return b, nil
	}},
	{name: EncodingLatin1, decode: func(b []byte) ([]byte, error) {
		return charmap.ISO8859_1.NewDecoder().Bytes(b)
	}},
	{name: EncodingUTF8Replace, decode: func(b []byte) ([]byte, error) {
		out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), b)
		return out, err
	}},
}

// GDPTable is the parsed GDP reference together with the encoding that
// decoded it.
type GDPTable struct {
	Rows     []model.GDP
	Encoding string
}

// Fallback reports whether the file was not valid UTF-8.
func (t GDPTable) Fallback() bool { return t.Encoding != EncodingUTF8 }

// ReadGDP decodes and parses the GDP reference. Rank is the 1-based row
// position. GDP values have thousands separators removed; values that still
// do not parse are unknown.
func ReadGDP(ctx context.Context, r io.Reader) (GDPTable, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return GDPTable{}, fmt.Errorf("read gdp: %w", err)
	}
	text, enc, err := decodeGDP(raw)
	if err != nil {
		return GDPTable{}, err
	}
	if err := ctx.Err(); err != nil {
		return GDPTable{}, err
	}

	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(text, []byte(utf8BOM))))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return GDPTable{}, fmt.Errorf("%w: empty gdp file", ErrMissingColumn)
	}
	if err != nil {
		return GDPTable{}, fmt.Errorf("%w: gdp header: %v", ErrMalformedValue, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range []string{colCountry, colGDP} {
		if _, ok := cols[name]; !ok {
			return GDPTable{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	ci, gi := cols[colCountry], cols[colGDP]

	table := GDPTable{Encoding: enc}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return GDPTable{}, fmt.Errorf("%w: gdp row %d: %v", ErrMalformedValue, len(table.Rows)+2, err)
		}
		table.Rows = append(table.Rows, model.GDP{
			Country:  cell(rec, ci),
			Millions: parseMillions(cell(rec, gi)),
			Rank:     len(table.Rows) + 1,
		})
	}
	return table, nil
}

// LoadGDP reads the GDP reference CSV from path.
func LoadGDP(ctx context.Context, path string) (GDPTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return GDPTable{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := ReadGDP(ctx, f)
	if err != nil {
		return GDPTable{}, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

func decodeGDP(raw []byte) ([]byte, string, error) {
	var errs []error
	for _, d := range gdpDecoders {
		out, err := d.decode(raw)
		if err == nil {
			return out, d.name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
	}
	return nil, "", fmt.Errorf("%w: %w", ErrDecode, errors.Join(errs...))
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseMillions(raw string) model.Metric {
	v := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if v == "" {
		return model.Unknown
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return model.Unknown
	}
	return model.KnownMetric(f)
}
