package sheettable

import "context"

// Engine is the opaque spreadsheet codec. Implementations live under
// adapters/ and only need to list sheets, enumerate a sheet's rows and write
// a whole sheet once.
type Engine interface {
	// Sheets returns the sheet names in workbook order
	Sheets(ctx context.Context) ([]string, error)

	// Rows returns a forward-only iterator over the non-empty rows of a sheet
	// in ascending row number
	Rows(ctx context.Context, sheet string) (RowIterator, error)

	// WriteSheet writes all rows of a sheet in one call. A sheet can be
	// written at most once per engine.
	WriteSheet(ctx context.Context, sheet string, rows []*Row) error

	// Close releases the underlying handle
	Close() error
}

// RowIterator walks the rows of one sheet.
type RowIterator interface {
	Next() bool
	Row() *Row
	Err() error
	Close() error
}

// Source opens an engine over a concrete file, stream or remote document.
type Source interface {
	Open(ctx context.Context, readOnly bool) (Engine, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, readOnly bool) (Engine, error)

// Open calls f(ctx, readOnly).
func (f SourceFunc) Open(ctx context.Context, readOnly bool) (Engine, error) {
	return f(ctx, readOnly)
}

// Remover is implemented by destinations that can delete an existing target
// before it is rewritten.
type Remover interface {
	RemoveExisting() error
}

// SliceIterator iterates over rows already held in memory.
type SliceIterator struct {
	rows []*Row
	pos  int
	cur  *Row
}

// NewSliceIterator returns an iterator over rows.
func NewSliceIterator(rows []*Row) *SliceIterator {
	return &SliceIterator{rows: rows}
}

func (it *SliceIterator) Next() bool {
	if it.pos >= len(it.rows) {
		it.cur = nil
		return false
	}
	it.cur = it.rows[it.pos]
	it.pos++
	return true
}

func (it *SliceIterator) Row() *Row { return it.cur }

func (it *SliceIterator) Err() error { return nil }

func (it *SliceIterator) Close() error {
	it.pos = len(it.rows)
	return nil
}
