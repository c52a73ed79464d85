package sheettable

import (
	"context"
	"fmt"
)

// TableWriter writes in-memory tables to a sheet.
type TableWriter struct {
	config Config
}

// NewTableWriter creates a table writer. Progress and logger settings of cfg
// are used; the header row is always written.
func NewTableWriter(cfg *Config) *TableWriter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &TableWriter{config: *cfg}
}

// Write replaces dst with a workbook whose sheetName holds a header row and
// one row per record. A template, when the destination supports one, seeds
// the workbook.
func (w *TableWriter) Write(ctx context.Context, dst Source, sheetName string, table *Table) error {
	if table == nil {
		return fmt.Errorf("%w: table is required", ErrInvalidArgument)
	}
	if sheetName == "" {
		return fmt.Errorf("%w: sheet name is required", ErrInvalidArgument)
	}

	rows := make([]*Row, 0, table.Len()+1)
	rows = append(rows, headerRow(table.ColumnNames()))
	for i, record := range table.records {
		row := NewRow(i + 2)
		for j, c := range table.columns {
			row.Add(j+1, cellValue(record.Values[c.Name]))
		}
		rows = append(rows, row)
		w.config.notify(int64(i + 1))
	}

	// Best effort: a stale destination that cannot be removed is simply
	// overwritten by the engine.
	if r, ok := dst.(Remover); ok {
		_ = r.RemoveExisting()
	}

	wb, err := Load(ctx, dst, false)
	if err != nil {
		return err
	}
	defer wb.Close()
	wb.SetLogger(w.config.logger())

	if err := wb.CreateSheet(sheetName); err != nil {
		return err
	}
	if err := wb.WriteRows(ctx, rows); err != nil {
		return err
	}
	return wb.Close()
}

// WriteTable writes table to dst with the default writer.
func WriteTable(ctx context.Context, dst Source, sheetName string, table *Table) error {
	return NewTableWriter(nil).Write(ctx, dst, sheetName, table)
}

func headerRow(names []string) *Row {
	row := NewRow(1)
	for i, name := range names {
		row.Add(i+1, name)
	}
	return row
}

// cellValue maps the Null marker to nil so engines see a single empty value
func cellValue(v interface{}) interface{} {
	if IsNull(v) {
		return nil
	}
	return v
}
