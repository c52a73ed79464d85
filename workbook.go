package sheettable

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

// Workbook wraps an Engine with sheet selection, row lookup and the
// write-once bookkeeping. A Workbook owns its engine until Close and is not
// safe for concurrent use.
type Workbook struct {
	engine   Engine
	readOnly bool
	active   string
	written  map[string]bool
	closed   bool
	logger   *slog.Logger
}

// Load opens src and returns a workbook over it. A failed Load leaves
// nothing open.
func Load(ctx context.Context, src Source, readOnly bool) (*Workbook, error) {
	if src == nil {
		return nil, newOpError("load", "", fmt.Errorf("%w: source is required", ErrInvalidArgument))
	}

	// Check if context is cancelled
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	engine, err := src.Open(ctx, readOnly)
	if err != nil {
		return nil, newOpError("load", "", err)
	}

	return &Workbook{
		engine:   engine,
		readOnly: readOnly,
		written:  make(map[string]bool),
		logger:   discardLogger,
	}, nil
}

// SetLogger sets the logger used for debug events.
func (w *Workbook) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = discardLogger
	}
	w.logger = logger
}

// ReadOnly reports whether the workbook was loaded read-only.
func (w *Workbook) ReadOnly() bool {
	return w.readOnly
}

// ActiveSheet returns the selected sheet name, empty if none.
func (w *Workbook) ActiveSheet() string {
	return w.active
}

func (w *Workbook) checkOpen(op string) error {
	if w.closed {
		return newOpError(op, w.active, fmt.Errorf("%w: workbook is closed", ErrState))
	}
	return nil
}

// Sheets returns the sheet names in workbook order.
func (w *Workbook) Sheets(ctx context.Context) ([]string, error) {
	if err := w.checkOpen("sheets"); err != nil {
		return nil, err
	}
	names, err := w.engine.Sheets(ctx)
	if err != nil {
		return nil, newOpError("sheets", "", err)
	}
	return names, nil
}

// SheetNames lazily yields the sheet names. Each call queries the engine
// again.
func (w *Workbook) SheetNames(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		names, err := w.Sheets(ctx)
		if err != nil {
			yield("", err)
			return
		}
		for _, name := range names {
			if !yield(name, nil) {
				return
			}
		}
	}
}

// SelectSheet makes the sheet with the exact given name active.
func (w *Workbook) SelectSheet(ctx context.Context, name string) error {
	names, err := w.Sheets(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			w.active = n
			w.logger.Debug("sheet selected", "sheet", n)
			return nil
		}
	}
	return newOpError("select", name, fmt.Errorf("%w: sheet %q", ErrNotFound, name))
}

// SelectSheetIndex makes the sheet at the 1-based index active.
func (w *Workbook) SelectSheetIndex(ctx context.Context, index int) error {
	if index < 1 {
		return newOpError("select", "", fmt.Errorf("%w: sheet index must be greater than 0, got %d", ErrInvalidArgument, index))
	}
	names, err := w.Sheets(ctx)
	if err != nil {
		return err
	}
	if index > len(names) {
		return newOpError("select", "", fmt.Errorf("%w: sheet index %d (workbook has %d sheets)", ErrNotFound, index, len(names)))
	}
	w.active = names[index-1]
	w.logger.Debug("sheet selected", "sheet", w.active, "index", index)
	return nil
}

// CreateSheet selects name as the target of the next WriteRows. The sheet
// does not need to exist yet.
func (w *Workbook) CreateSheet(name string) error {
	if err := w.checkOpen("create"); err != nil {
		return err
	}
	if w.readOnly {
		return newOpError("create", name, fmt.Errorf("%w: workbook is read-only", ErrState))
	}
	if name == "" {
		return newOpError("create", name, fmt.Errorf("%w: sheet name is required", ErrInvalidArgument))
	}
	w.active = name
	return nil
}

// Rows returns an iterator over the active sheet. The caller must close it.
func (w *Workbook) Rows(ctx context.Context) (RowIterator, error) {
	if err := w.checkOpen("rows"); err != nil {
		return nil, err
	}
	if w.active == "" {
		return nil, newOpError("rows", "", fmt.Errorf("%w: no sheet selected", ErrState))
	}
	it, err := w.engine.Rows(ctx, w.active)
	if err != nil {
		return nil, newOpError("rows", w.active, err)
	}
	return it, nil
}

// GetRows yields the rows of the active sheet in ascending row number. The
// underlying iterator is closed when the loop ends, including on break.
func (w *Workbook) GetRows(ctx context.Context) iter.Seq2[*Row, error] {
	return func(yield func(*Row, error) bool) {
		it, err := w.Rows(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		defer it.Close()

		for it.Next() {
			if !yield(it.Row(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, newOpError("rows", w.active, err))
		}
	}
}

// GetRow returns the row with the given number, or false if it does not
// exist.
func (w *Workbook) GetRow(ctx context.Context, number int) (*Row, bool, error) {
	for row, err := range w.GetRows(ctx) {
		if err != nil {
			return nil, false, err
		}
		if row.Number == number {
			return row, true, nil
		}
		if row.Number > number {
			break
		}
	}
	return nil, false, nil
}

// WriteRows writes rows to the active sheet. Engines accept one write per
// sheet, so a second call for the same sheet fails with ErrState.
func (w *Workbook) WriteRows(ctx context.Context, rows []*Row) error {
	if err := w.checkOpen("write"); err != nil {
		return err
	}
	if w.readOnly {
		return newOpError("write", w.active, fmt.Errorf("%w: workbook is read-only", ErrState))
	}
	if w.active == "" {
		return newOpError("write", "", fmt.Errorf("%w: no sheet selected", ErrState))
	}
	if w.written[w.active] {
		return newOpError("write", w.active, fmt.Errorf("%w: sheet already written", ErrState))
	}
	w.written[w.active] = true

	if err := w.engine.WriteSheet(ctx, w.active, rows); err != nil {
		return newOpError("write", w.active, err)
	}
	w.logger.Debug("rows written", "sheet", w.active, "rows", len(rows))
	return nil
}

// Close releases the engine. It is safe to call more than once.
func (w *Workbook) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.engine.Close(); err != nil {
		return newOpError("close", w.active, err)
	}
	return nil
}
