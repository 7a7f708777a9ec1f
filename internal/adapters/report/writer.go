// Package report writes report tables to files.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Formats.
const (
	FormatCSV = "csv"
	FormatTXT = "txt"
)

// maxVersion bounds the numbered names tried for an existing file.
const maxVersion = 99

// Table is a rendered report: a header and string rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Writer writes tables as files named after a process and a team.
type Writer struct {
	dir       string
	format    string
	overwrite bool
	team      string
}

// NewWriter creates a Writer for team's reports.
func NewWriter(team string, opts ...Option) *Writer {
	w := &Writer{
		dir:    ".",
		format: FormatCSV,
		team:   team,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Format returns the output format.
func (w *Writer) Format() string { return w.format }

// FileName returns the base file name of a report: "<name>_<team>.<ext>".
func (w *Writer) FileName(name string) string {
	return name + "_" + safeName(w.team) + "." + w.format
}

// Path picks the file to write name to. An existing file is kept unless the
// writer overwrites: "<name>_<team>_<n>.<ext>" with the first free n from 1
// to 99 is used instead.
func (w *Writer) Path(name string) (string, error) {
	path := filepath.Join(w.dir, w.FileName(name))
	if w.overwrite {
		return path, nil
	}
	free, err := isFree(path)
	if err != nil || free {
		return path, err
	}

	stem := strings.TrimSuffix(path, "."+w.format)
	for n := 1; n <= maxVersion; n++ {
		candidate := stem + "_" + strconv.Itoa(n) + "." + w.format
		free, err := isFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s and %d numbered versions exist", ErrNoFreeName, path, maxVersion)
}

func isFree(path string) (bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return false, nil
}

// Write renders t and writes it under name. It returns the path written.
func (w *Writer) Write(ctx context.Context, name string, t Table) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := Render(t, w.format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	path, err := w.Path(name)
	if err != nil {
		return "", err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !w.overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	return path, nil
}

// Render encodes t in format.
func Render(t Table, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		cw := csv.NewWriter(&buf)
		if err := cw.Write(t.Header); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
		return buf.Bytes(), nil
	case FormatTXT:
		tbl := table.New().
			Border(lipgloss.ASCIIBorder()).
			Headers(t.Header...).
			Rows(t.Rows...)
		return []byte(tbl.String() + "\n"), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// safeName keeps letters, digits, '-' and '_' of a team name for file names.
func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "team"
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
}
