package excel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/xuri/excelize/v2"
)

// Source opens Excel workbooks as sheettable engines
type Source struct {
	config *Config
}

// New creates a new Excel source with the given configuration
func New(config *Config) (*Source, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create a copy of config to avoid external modifications
	configCopy := *config

	return &Source{
		config: &configCopy,
	}, nil
}

// File is a shortcut for a source reading and writing the file at path
func File(path string) *Source {
	return &Source{config: &Config{FilePath: path}}
}

// Open opens the workbook. Read-only engines read FilePath or Reader;
// writable engines start from TemplatePath, or an empty workbook, and save
// to Writer or FilePath when closed.
func (s *Source) Open(ctx context.Context, readOnly bool) (sheettable.Engine, error) {
	// Check if context is cancelled
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	opts := excelize.Options{Password: s.config.Password}

	var f *excelize.File
	var err error
	switch {
	case readOnly && s.config.Reader != nil:
		f, err = excelize.OpenReader(s.config.Reader, opts)
	case readOnly && s.config.FilePath != "":
		f, err = excelize.OpenFile(s.config.FilePath, opts)
	case readOnly:
		return nil, fmt.Errorf("%w: %w", sheettable.ErrInvalidArgument, ErrNoReadTarget)
	case s.config.Writer == nil && s.config.FilePath == "":
		return nil, fmt.Errorf("%w: %w", sheettable.ErrInvalidArgument, ErrNoWriteTarget)
	case s.config.TemplatePath != "":
		f, err = excelize.OpenFile(s.config.TemplatePath, opts)
	default:
		f = excelize.NewFile()
	}
	if err != nil {
		return nil, classifyOpenError(err)
	}

	return &engine{
		config:     s.config,
		file:       f,
		readOnly:   readOnly,
		written:    make(map[string]bool),
		dateStyles: make(map[int]bool),
	}, nil
}

// RemoveExisting deletes the destination file if it exists. Stream
// destinations have nothing to remove.
func (s *Source) RemoveExisting() error {
	if s.config.Writer != nil || s.config.FilePath == "" {
		return nil
	}
	if err := os.Remove(s.config.FilePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func classifyOpenError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission), errors.Is(err, excelize.ErrWorkbookPassword):
		return fmt.Errorf("%w: failed to open Excel file: %w", sheettable.ErrIO, err)
	default:
		// zip.ErrFormat, excelize.ErrWorkbookFileFormat and XML errors
		return fmt.Errorf("%w: failed to open Excel file: %w", sheettable.ErrFormat, err)
	}
}

type engine struct {
	config   *Config
	file     *excelize.File
	readOnly bool
	written  map[string]bool
	claimed  bool // the workbook's first sheet has been taken over by a write
	dirty    bool // sheets were written since the last save

	dateStyles map[int]bool
	date1904   *bool
}

// Sheets returns the sheet names in workbook order
func (e *engine) Sheets(ctx context.Context) ([]string, error) {
	return e.file.GetSheetList(), nil
}

// Rows streams the rows of a sheet without loading the worksheet at once
func (e *engine) Rows(ctx context.Context, sheet string) (sheettable.RowIterator, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rows, err := e.file.Rows(sheet)
	if err != nil {
		var notExist excelize.ErrSheetNotExist
		if errors.As(err, &notExist) {
			return nil, fmt.Errorf("%w: %w", sheettable.ErrNotFound, err)
		}
		return nil, fmt.Errorf("%w: failed to get rows: %w", sheettable.ErrFormat, err)
	}
	return &rowIterator{engine: e, sheet: sheet, rows: rows}, nil
}

// WriteSheet writes all rows through a stream writer. The workbook is saved
// by Close.
func (e *engine) WriteSheet(ctx context.Context, sheet string, rows []*sheettable.Row) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if e.readOnly {
		return fmt.Errorf("%w: workbook opened read-only", sheettable.ErrState)
	}
	if e.written[sheet] {
		return fmt.Errorf("%w: sheet %q already written", sheettable.ErrState, sheet)
	}
	e.written[sheet] = true

	if err := e.prepareSheet(sheet); err != nil {
		return err
	}

	sw, err := e.file.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b *sheettable.Row) int {
		return a.Number - b.Number
	})
	for _, row := range sorted {
		values := row.Values(row.MaxColumn())
		for i, v := range values {
			if sheettable.IsNull(v) {
				values[i] = nil
			}
		}
		if row.Number < 1 {
			return fmt.Errorf("%w: invalid row number %d", sheettable.ErrInvalidArgument, row.Number)
		}
		cell := columnName(1) + strconv.Itoa(row.Number)
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Number, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	e.dirty = true
	return nil
}

// prepareSheet makes sure the sheet exists. The first sheet written takes
// over the workbook's first sheet, so a template or a new file does not keep
// an empty default sheet.
func (e *engine) prepareSheet(sheet string) error {
	index, err := e.file.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to get sheet index: %w", err)
	}
	claim := !e.claimed
	e.claimed = true
	if index != -1 {
		return nil
	}

	if claim {
		if err := e.file.SetSheetName(e.file.GetSheetName(0), sheet); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
		return nil
	}
	if _, err := e.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	return nil
}

func (e *engine) save() error {
	if e.config.Writer != nil {
		if err := e.file.Write(e.config.Writer); err != nil {
			return fmt.Errorf("%w: failed to write Excel stream: %w", sheettable.ErrIO, err)
		}
		return nil
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(e.config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %w", sheettable.ErrIO, err)
	}
	if err := e.file.SaveAs(e.config.FilePath); err != nil {
		return fmt.Errorf("%w: failed to save Excel file: %w", sheettable.ErrIO, err)
	}
	return nil
}

// Close saves the workbook once when sheets were written, so a stream
// destination receives a single package holding every sheet.
func (e *engine) Close() error {
	var err error
	if e.dirty {
		e.dirty = false
		err = e.save()
	}
	if cerr := e.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// isDateStyle reports whether the style formats numbers as dates or times
func (e *engine) isDateStyle(styleID int) (bool, error) {
	if date, ok := e.dateStyles[styleID]; ok {
		return date, nil
	}
	style, err := e.file.GetStyle(styleID)
	if err != nil {
		return false, err
	}
	date := style.NumFmt >= 14 && style.NumFmt <= 22 || style.NumFmt >= 45 && style.NumFmt <= 47
	e.dateStyles[styleID] = date
	return date, nil
}

func (e *engine) use1904() (bool, error) {
	if e.date1904 == nil {
		props, err := e.file.GetWorkbookProps()
		if err != nil {
			return false, err
		}
		v := props.Date1904 != nil && *props.Date1904
		e.date1904 = &v
	}
	return *e.date1904, nil
}

type rowIterator struct {
	engine *engine
	sheet  string
	rows   *excelize.Rows
	number int
	cur    *sheettable.Row
	err    error
	done   bool
}

// Next skips rows without any non-empty cell; excelize reports gaps in the
// sheet as empty rows and an xlsx row without values looks the same.
func (it *rowIterator) Next() bool {
	for !it.done && it.rows.Next() {
		it.number++
		row, err := it.readRow()
		if err != nil {
			it.err = fmt.Errorf("%w: failed to read row %d: %w", sheettable.ErrFormat, it.number, err)
			break
		}
		if len(row.Cells) > 0 {
			it.cur = row
			return true
		}
	}

	if !it.done && it.err == nil {
		if err := it.rows.Error(); err != nil {
			it.err = fmt.Errorf("%w: failed to read rows: %w", sheettable.ErrFormat, err)
		}
	}
	it.done = true
	it.cur = nil
	return false
}

// readRow reads the stored values of the current row, not their
// General-formatted text
func (it *rowIterator) readRow() (*sheettable.Row, error) {
	cols, err := it.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	row := sheettable.NewRow(it.number)
	for i, text := range cols {
		if text == "" {
			continue
		}
		v, err := it.cellValue(i+1, text)
		if err != nil {
			return nil, err
		}
		row.Add(i+1, v)
	}
	return row, nil
}

// cellValue types a raw value by the cell's stored type. Text that cannot be
// a number or a boolean is returned as is; anything else is looked up, so
// string cells such as "007" or "TRUE" stay strings.
func (it *rowIterator) cellValue(column int, text string) (interface{}, error) {
	parsed := sheettable.ParseText(text)
	if _, ok := parsed.(string); ok {
		return text, nil
	}

	cell, err := excelize.CoordinatesToCellName(column, it.number)
	if err != nil {
		return nil, err
	}
	typ, err := it.engine.file.GetCellType(it.sheet, cell)
	if err != nil {
		return nil, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return text == "1" || strings.EqualFold(text, "true"), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return it.numberValue(cell, parsed)
	default:
		return text, nil
	}
}

// numberValue turns serial numbers in date-formatted cells into time.Time
func (it *rowIterator) numberValue(cell string, v interface{}) (interface{}, error) {
	styleID, err := it.engine.file.GetCellStyle(it.sheet, cell)
	if err != nil || styleID == 0 {
		return v, err
	}
	date, err := it.engine.isDateStyle(styleID)
	if err != nil || !date {
		return v, err
	}

	var serial float64
	switch n := v.(type) {
	case int64:
		serial = float64(n)
	case float64:
		serial = n
	default:
		return v, nil
	}
	date1904, err := it.engine.use1904()
	if err != nil {
		return nil, err
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		// Negative serials are plain numbers
		return v, nil
	}
	return t, nil
}

func (it *rowIterator) Row() *sheettable.Row { return it.cur }

func (it *rowIterator) Err() error { return it.err }

func (it *rowIterator) Close() error {
	it.done = true
	return it.rows.Close()
}

// columnName converts a column number to Excel column name (1 -> A, 26 -> Z, 27 -> AA)
func columnName(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
