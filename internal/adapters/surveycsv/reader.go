// Package surveycsv reads the survey export produced by the form tool.
package surveycsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Sentinel error kinds for this package.
var (
	ErrNoHeader   = errors.New("csv has no header row")
	ErrReadFailed = errors.New("read csv failed")
)

// Table is a decoded survey export. Cells are cleaned: non-breaking spaces
// become spaces and surrounding whitespace is trimmed.
type Table struct {
	Header []string
	Rows   []Row
}

// Row is one data record with the line it starts on.
type Row struct {
	Line  int
	Cells []string
}

// RowError is a record the CSV parser rejected. Reading continues after it.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Read opens path and decodes it. See Decode.
func Read(ctx context.Context, path string) (*Table, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	defer f.Close()

	return Decode(ctx, f)
}

// Decode reads a UTF-8 survey export (a leading BOM is dropped). Records are
// kept as-is, even when their cell count differs from the header; deciding
// what to do with them is up to the caller.
func Decode(ctx context.Context, r io.Reader) (*Table, []RowError, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(dec)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrNoHeader
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: header: %w", ErrReadFailed, err)
	}

	t := &Table{Header: clean(header)}
	var rowErrs []RowError
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				rowErrs = append(rowErrs, RowError{Line: pe.StartLine, Err: pe.Err})
				continue
			}
			return nil, nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
		}

		line, _ := reader.FieldPos(0)
		t.Rows = append(t.Rows, Row{Line: line, Cells: clean(record)})
	}
	return t, rowErrs, nil
}

var cellReplacer = strings.NewReplacer("\u00a0", " ") //nolint:gochecknoglobals // immutable replacer

func clean(record []string) []string {
	out := make([]string, len(record))
	for i, c := range record {
		out[i] = strings.TrimSpace(cellReplacer.Replace(c))
	}
	return out
}
