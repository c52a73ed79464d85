// Package xls reads legacy Excel 97-2003 (.xls) workbooks. The engine is
// read-only; write through the excel adapter instead.
package xls

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/extrame/xls"
	sheettable "github.com/ideamans/go-sheettable"
)

// DefaultCharset is used for workbooks whose strings are not UTF-16
const DefaultCharset = "utf-8"

// ErrMissingFilePath is returned when neither a path nor a reader is configured
var ErrMissingFilePath = errors.New("file path or reader is required")

// Config holds configuration for .xls workbooks
type Config struct {
	FilePath string        // Path to the .xls file
	Reader   io.ReadSeeker // Read from this stream instead of FilePath
	Charset  string        // Charset of byte strings (default: utf-8)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.FilePath == "" && c.Reader == nil {
		return ErrMissingFilePath
	}
	return nil
}

// Source opens .xls workbooks as read-only sheettable engines
type Source struct {
	config Config
}

// New creates a new .xls source with the given configuration
func New(config *Config) (*Source, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Source{config: *config}, nil
}

// File is a shortcut for a source reading the file at path
func File(path string) *Source {
	return &Source{config: Config{FilePath: path}}
}

// Open parses the workbook. Opening for writing fails with ErrState.
func (s *Source) Open(ctx context.Context, readOnly bool) (sheettable.Engine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !readOnly {
		return nil, fmt.Errorf("%w: .xls workbooks are read-only", sheettable.ErrState)
	}

	charset := s.config.Charset
	if charset == "" {
		charset = DefaultCharset
	}

	r := s.config.Reader
	var closer io.Closer
	if r == nil {
		f, err := os.Open(s.config.FilePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open .xls file: %w", sheettable.ErrIO, err)
		}
		r, closer = f, f
	}

	var wb *xls.WorkBook
	err := guard(func() (err error) {
		wb, err = xls.OpenReader(r, charset)
		return err
	})
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("%w: failed to parse .xls file: %w", sheettable.ErrFormat, err)
	}

	return &engine{wb: wb, closer: closer}, nil
}

type engine struct {
	wb     *xls.WorkBook
	closer io.Closer
	closed bool
}

// Sheets returns the sheet names in workbook order
func (e *engine) Sheets(ctx context.Context) ([]string, error) {
	if e.closed {
		return nil, fmt.Errorf("%w: engine is closed", sheettable.ErrState)
	}

	var names []string
	err := guard(func() error {
		for i := 0; i < e.wb.NumSheets(); i++ {
			if sheet := e.wb.GetSheet(i); sheet != nil {
				names = append(names, sheet.Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheets: %w", sheettable.ErrFormat, err)
	}
	return names, nil
}

// Rows decodes the whole sheet; the format keeps no row index to stream from.
func (e *engine) Rows(ctx context.Context, sheet string) (sheettable.RowIterator, error) {
	if e.closed {
		return nil, fmt.Errorf("%w: engine is closed", sheettable.ErrState)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var rows []*sheettable.Row
	found := false
	err := guard(func() error {
		for i := 0; i < e.wb.NumSheets(); i++ {
			ws := e.wb.GetSheet(i)
			if ws == nil || ws.Name != sheet {
				continue
			}
			found = true
			rows = sheetRows(ws)
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %w", sheettable.ErrFormat, sheet, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: sheet %q", sheettable.ErrNotFound, sheet)
	}
	return sheettable.NewSliceIterator(rows), nil
}

func sheetRows(ws *xls.WorkSheet) []*sheettable.Row {
	var rows []*sheettable.Row
	for r := 0; r <= int(ws.MaxRow); r++ {
		src := ws.Row(r)
		if src == nil {
			continue
		}
		row := sheettable.NewRow(r + 1)
		for c := src.FirstCol(); c <= src.LastCol(); c++ {
			if text := src.Col(c); text != "" {
				row.Add(c+1, sheettable.ParseText(text))
			}
		}
		if len(row.Cells) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

func (e *engine) WriteSheet(ctx context.Context, sheet string, rows []*sheettable.Row) error {
	return fmt.Errorf("%w: .xls workbooks are read-only", sheettable.ErrState)
}

func (e *engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}

// guard turns panics of the decoder on malformed input into errors
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed workbook: %v", r)
		}
	}()
	return fn()
}
