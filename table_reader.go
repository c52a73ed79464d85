package sheettable

import (
	"context"
	"fmt"
	"strconv"
)

// TableOptions controls how a sheet is materialized into a Table.
type TableOptions struct {
	StartRow   int   // First sheet row considered, 1-based (default: 1)
	MaxRows    int64 // Maximum data records, 0 for no limit
	WithHeader bool  // First accepted row holds column names
}

func (o TableOptions) validate() error {
	if o.StartRow < 1 {
		return fmt.Errorf("%w: start row must be greater than 0, got %d", ErrInvalidArgument, o.StartRow)
	}
	if o.MaxRows < 0 {
		return fmt.Errorf("%w: max rows must not be negative, got %d", ErrInvalidArgument, o.MaxRows)
	}
	return nil
}

// TableReader loads sheets into in-memory tables.
type TableReader struct {
	config Config
}

// NewTableReader creates a table reader. Only the logger of cfg is used.
func NewTableReader(cfg *Config) *TableReader {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &TableReader{config: *cfg}
}

// LoadTable reads the sheet at the 1-based index into a Table.
func (r *TableReader) LoadTable(ctx context.Context, src Source, sheetIndex int, opts TableOptions) (*Table, error) {
	if sheetIndex < 1 {
		return nil, fmt.Errorf("%w: sheet index must be greater than 0, got %d", ErrInvalidArgument, sheetIndex)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return r.load(ctx, src, func(wb *Workbook) error {
		return wb.SelectSheetIndex(ctx, sheetIndex)
	}, opts)
}

// LoadTableByName reads the sheet with the exact given name into a Table.
func (r *TableReader) LoadTableByName(ctx context.Context, src Source, sheetName string, opts TableOptions) (*Table, error) {
	if sheetName == "" {
		return nil, fmt.Errorf("%w: sheet name is required", ErrInvalidArgument)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return r.load(ctx, src, func(wb *Workbook) error {
		return wb.SelectSheet(ctx, sheetName)
	}, opts)
}

// CountRows counts the data rows of the sheet at the 1-based index without
// materializing values.
func (r *TableReader) CountRows(ctx context.Context, src Source, sheetIndex int, withHeader bool) (int64, error) {
	if sheetIndex < 1 {
		return 0, fmt.Errorf("%w: sheet index must be greater than 0, got %d", ErrInvalidArgument, sheetIndex)
	}
	return r.count(ctx, src, func(wb *Workbook) error {
		return wb.SelectSheetIndex(ctx, sheetIndex)
	}, withHeader)
}

// CountRowsByName counts the data rows of the named sheet.
func (r *TableReader) CountRowsByName(ctx context.Context, src Source, sheetName string, withHeader bool) (int64, error) {
	if sheetName == "" {
		return 0, fmt.Errorf("%w: sheet name is required", ErrInvalidArgument)
	}
	return r.count(ctx, src, func(wb *Workbook) error {
		return wb.SelectSheet(ctx, sheetName)
	}, withHeader)
}

func (r *TableReader) open(ctx context.Context, src Source, selectSheet func(*Workbook) error) (*Workbook, error) {
	wb, err := Load(ctx, src, true)
	if err != nil {
		return nil, err
	}
	wb.SetLogger(r.config.logger())
	if err := selectSheet(wb); err != nil {
		wb.Close()
		return nil, err
	}
	return wb, nil
}

func (r *TableReader) count(ctx context.Context, src Source, selectSheet func(*Workbook) error, withHeader bool) (int64, error) {
	wb, err := r.open(ctx, src, selectSheet)
	if err != nil {
		return 0, err
	}
	defer wb.Close()

	var rows int64
	for row, err := range wb.GetRows(ctx) {
		if err != nil {
			return 0, err
		}
		if row.MaxColumn() > 0 {
			rows++
		}
	}
	if withHeader && rows > 0 {
		rows--
	}
	return rows, nil
}

func (r *TableReader) load(ctx context.Context, src Source, selectSheet func(*Workbook) error, opts TableOptions) (*Table, error) {
	wb, err := r.open(ctx, src, selectSheet)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	table := NewTable(wb.ActiveSheet())
	var emitted int64
	for row, err := range wb.GetRows(ctx) {
		if err != nil {
			return nil, err
		}
		if row.Number < opts.StartRow {
			continue
		}

		if len(table.columns) == 0 {
			// A row without cells cannot define columns
			if row.MaxColumn() == 0 {
				continue
			}
			if opts.WithHeader {
				if err := addHeaderColumns(table, row); err != nil {
					return nil, fmt.Errorf("row %d: %w", row.Number, err)
				}
				continue
			}
			addFieldColumns(table, row.MaxColumn())
		}

		record := NewRecord(row.Number)
		for i, c := range table.columns {
			record.Values[c.Name] = row.Value(i + 1)
		}
		table.appendRecord(record)

		emitted++
		if opts.MaxRows > 0 && emitted >= opts.MaxRows {
			break
		}
	}

	r.config.logger().Debug("table loaded", "sheet", table.Name, "columns", len(table.columns), "records", emitted)
	return table, nil
}

// addHeaderColumns names columns 1..MaxColumn from the header cells,
// falling back to "Field {column}" for absent or blank cells
func addHeaderColumns(table *Table, row *Row) error {
	for column := 1; column <= row.MaxColumn(); column++ {
		name, ok := row.Text(column)
		if !ok || name == "" {
			name = fieldName(column)
		}
		if err := table.AddColumn(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// addFieldColumns synthesizes "Field 1".."Field n", n inclusive
func addFieldColumns(table *Table, n int) {
	for column := 1; column <= n; column++ {
		// synthetic names are unique by construction
		_ = table.AddColumn(fieldName(column), nil)
	}
}

func fieldName(column int) string {
	return "Field " + strconv.Itoa(column)
}

// LoadTable reads the sheet at the 1-based index with the default reader.
func LoadTable(ctx context.Context, src Source, sheetIndex int, opts TableOptions) (*Table, error) {
	return NewTableReader(nil).LoadTable(ctx, src, sheetIndex, opts)
}

// CountRows counts the data rows of the sheet at the 1-based index with the
// default reader.
func CountRows(ctx context.Context, src Source, sheetIndex int, withHeader bool) (int64, error) {
	return NewTableReader(nil).CountRows(ctx, src, sheetIndex, withHeader)
}
