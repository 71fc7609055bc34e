// Package source loads the IMDb tab separated tables and the GDP reference
// CSV into domain records.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	utf8BOM = "\ufeff"

	// maxLineBytes bounds a single TSV line. IMDb rows are far shorter.
	maxLineBytes = 16 << 20

	// ctxCheckEvery is how many rows are read between cancellation checks.
	ctxCheckEvery = 1 << 16
)

// row gives access to one TSV record by column name.
type row struct {
	fields []string
	cols   map[string]int
	line   int
}

// get returns the named cell, or "" when the row is short.
func (r row) get(col string) string {
	i := r.cols[col]
	if i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// scanTSV reads a headed, unquoted tab separated stream and calls fn for
// every data row. Every name in required must appear in the header.
func scanTSV(ctx context.Context, r io.Reader, required []string, fn func(row) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		return fmt.Errorf("%w: empty input", ErrMissingColumn)
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	line := 1
	for scanner.Scan() {
		line++
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}
		if err := fn(row{fields: strings.Split(text, "\t"), cols: cols, line: line}); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read line %d: %w", line+1, err)
	}
	return nil
}

// loadFile opens path and hands it to read.
func loadFile[T any](ctx context.Context, path string, read func(context.Context, io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	out, err := read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return out, nil
}
