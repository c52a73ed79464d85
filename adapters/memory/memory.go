// Package memory provides an in-memory sheettable engine. It keeps rows as
// given, so it is mostly useful for tests and for staging data between
// engines.
package memory

import (
	"context"
	"fmt"
	"sync"

	sheettable "github.com/ideamans/go-sheettable"
)

// Sheet is a named list of rows in ascending row number.
type Sheet struct {
	Name string
	Rows []*sheettable.Row
}

// Book is a set of sheets shared by every engine opened from it.
type Book struct {
	mu      sync.Mutex
	sheets  []*Sheet
	opens   int
	closes  int
	writes  map[string]int
	OpenErr error // returned by Open when set
}

// New creates a book with the given sheets.
func New(sheets ...*Sheet) *Book {
	return &Book{
		sheets: sheets,
		writes: make(map[string]int),
	}
}

// Open implements sheettable.Source.
func (b *Book) Open(ctx context.Context, readOnly bool) (sheettable.Engine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	b.opens++
	return &engine{book: b, readOnly: readOnly, written: make(map[string]bool)}, nil
}

// Sheet returns the named sheet, nil if absent.
func (b *Book) Sheet(name string) *Sheet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sheet(name)
}

func (b *Book) sheet(name string) *Sheet {
	for _, s := range b.sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Opens returns how many engines were opened.
func (b *Book) Opens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opens
}

// Closes returns how many engines were closed.
func (b *Book) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

// Writes returns how many times the named sheet was written.
func (b *Book) Writes(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes[name]
}

type engine struct {
	book     *Book
	readOnly bool
	written  map[string]bool
	closed   bool
}

func (e *engine) Sheets(ctx context.Context) ([]string, error) {
	e.book.mu.Lock()
	defer e.book.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("%w: engine is closed", sheettable.ErrState)
	}
	names := make([]string, len(e.book.sheets))
	for i, s := range e.book.sheets {
		names[i] = s.Name
	}
	return names, nil
}

func (e *engine) Rows(ctx context.Context, name string) (sheettable.RowIterator, error) {
	e.book.mu.Lock()
	defer e.book.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("%w: engine is closed", sheettable.ErrState)
	}
	s := e.book.sheet(name)
	if s == nil {
		return nil, fmt.Errorf("%w: sheet %q", sheettable.ErrNotFound, name)
	}
	rows := make([]*sheettable.Row, len(s.Rows))
	copy(rows, s.Rows)
	return sheettable.NewSliceIterator(rows), nil
}

func (e *engine) WriteSheet(ctx context.Context, name string, rows []*sheettable.Row) error {
	e.book.mu.Lock()
	defer e.book.mu.Unlock()

	if e.closed {
		return fmt.Errorf("%w: engine is closed", sheettable.ErrState)
	}
	if e.readOnly {
		return fmt.Errorf("%w: engine is read-only", sheettable.ErrState)
	}
	if e.written[name] {
		return fmt.Errorf("%w: sheet %q already written", sheettable.ErrState, name)
	}
	e.written[name] = true
	e.book.writes[name]++

	stored := make([]*sheettable.Row, len(rows))
	for i, row := range rows {
		cp := sheettable.NewRow(row.Number)
		cp.Cells = append(cp.Cells, row.Cells...)
		stored[i] = cp
	}
	if s := e.book.sheet(name); s != nil {
		s.Rows = stored
		return nil
	}
	e.book.sheets = append(e.book.sheets, &Sheet{Name: name, Rows: stored})
	return nil
}

func (e *engine) Close() error {
	e.book.mu.Lock()
	defer e.book.mu.Unlock()

	if !e.closed {
		e.closed = true
		e.book.closes++
	}
	return nil
}

// NewSheet builds a sheet from dense values: values[i] becomes row i+1. Nil
// entries are left out and rows without cells are skipped, mirroring how
// spreadsheet engines store cells.
func NewSheet(name string, values ...[]interface{}) *Sheet {
	s := &Sheet{Name: name}
	for i, vals := range values {
		row := sheettable.NewRow(i + 1)
		for j, v := range vals {
			if v != nil {
				row.Add(j+1, v)
			}
		}
		if len(row.Cells) > 0 {
			s.Rows = append(s.Rows, row)
		}
	}
	return s
}
