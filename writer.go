package sheettable

import (
	"context"
	"fmt"
	"strconv"
)

// Writer drains a Cursor into a single sheet.
type Writer struct {
	config Config
}

// NewWriter creates a writer. A nil cfg uses DefaultConfig.
func NewWriter(cfg *Config) *Writer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Writer{config: *cfg}
}

// Write drains c into the sheet at the 1-based index of dst. An index past
// the existing sheets names a new sheet "Sheet{index}". The cursor is not
// closed.
func (w *Writer) Write(ctx context.Context, dst Source, sheetIndex int, c Cursor) error {
	if sheetIndex < 1 {
		return fmt.Errorf("%w: sheet index must be greater than 0, got %d", ErrInvalidArgument, sheetIndex)
	}
	return w.write(ctx, dst, c, func(wb *Workbook) error {
		names, err := wb.Sheets(ctx)
		if err != nil {
			return err
		}
		name := "Sheet" + strconv.Itoa(sheetIndex)
		if sheetIndex <= len(names) {
			name = names[sheetIndex-1]
		}
		return wb.CreateSheet(name)
	})
}

// WriteSheet drains c into the named sheet of dst.
func (w *Writer) WriteSheet(ctx context.Context, dst Source, sheetName string, c Cursor) error {
	if sheetName == "" {
		return fmt.Errorf("%w: sheet name is required", ErrInvalidArgument)
	}
	return w.write(ctx, dst, c, func(wb *Workbook) error {
		return wb.CreateSheet(sheetName)
	})
}

func (w *Writer) write(ctx context.Context, dst Source, c Cursor, target func(*Workbook) error) error {
	if c == nil {
		return fmt.Errorf("%w: cursor is required", ErrInvalidArgument)
	}

	rows, err := w.collect(c)
	if err != nil {
		return err
	}

	wb, err := Load(ctx, dst, false)
	if err != nil {
		return err
	}
	defer wb.Close()
	wb.SetLogger(w.config.logger())

	if err := target(wb); err != nil {
		return err
	}
	if err := wb.WriteRows(ctx, rows); err != nil {
		return err
	}
	return wb.Close()
}

// collect reads the cursor to the end and builds every row in memory
func (w *Writer) collect(c Cursor) ([]*Row, error) {
	var rows []*Row
	fields := c.FieldCount()

	if w.config.WithHeader {
		names := make([]string, fields)
		for i := range names {
			names[i] = c.GetName(i)
		}
		rows = append(rows, headerRow(names))
	}

	var records int64
	for c.Read() {
		row := NewRow(len(rows) + 1)
		for i := 0; i < fields; i++ {
			row.Add(i+1, cellValue(c.GetValue(i)))
		}
		rows = append(rows, row)
		records++
		w.config.notify(records)
	}
	if e, ok := c.(interface{ Err() error }); ok {
		if err := e.Err(); err != nil {
			return nil, fmt.Errorf("failed to read cursor: %w", err)
		}
	}
	return rows, nil
}
