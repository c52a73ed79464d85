package sheettable

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Reader is a forward-only cursor over one sheet. Columns are derived once
// on Open from the header row (when configured) and the first data row.
// Read advances to the next row; a missing row ends the stream.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	config Config

	wb        *Workbook
	rows      RowIterator
	pending   *Row // next row from the iterator, not yet consumed
	exhausted bool

	columns []Column
	values  []interface{}
	next    int   // sheet row number the next Read looks for
	read    int64 // data rows returned so far
	done    bool
	err     error
}

// NewReader creates a closed reader. A nil cfg uses DefaultConfig.
func NewReader(cfg *Config) *Reader {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Reader{config: *cfg}
}

// Open opens src and positions the reader before the first data row of the
// sheet at the 1-based index.
func (r *Reader) Open(ctx context.Context, src Source, sheetIndex int) error {
	if sheetIndex < 1 {
		return fmt.Errorf("%w: sheet index must be greater than 0, got %d", ErrInvalidArgument, sheetIndex)
	}
	return r.open(ctx, src, func(wb *Workbook) error {
		return wb.SelectSheetIndex(ctx, sheetIndex)
	})
}

// OpenSheet is like Open but selects the sheet by exact name.
func (r *Reader) OpenSheet(ctx context.Context, src Source, sheetName string) error {
	return r.open(ctx, src, func(wb *Workbook) error {
		return wb.SelectSheet(ctx, sheetName)
	})
}

func (r *Reader) open(ctx context.Context, src Source, selectSheet func(*Workbook) error) error {
	if r.wb != nil {
		return fmt.Errorf("%w: reader is already open", ErrState)
	}

	wb, err := Load(ctx, src, true)
	if err != nil {
		return err
	}
	wb.SetLogger(r.config.logger())
	if err := selectSheet(wb); err != nil {
		wb.Close()
		return err
	}
	rows, err := wb.Rows(ctx)
	if err != nil {
		wb.Close()
		return err
	}

	*r = Reader{config: r.config, wb: wb, rows: rows, next: 1}
	if r.config.WithHeader {
		r.next = 2
	}
	if err := r.loadColumns(); err != nil {
		r.Close()
		return err
	}

	r.config.logger().Debug("reader opened", "sheet", wb.ActiveSheet(), "columns", len(r.columns), "header", r.config.WithHeader)
	return nil
}

// loadColumns derives names from the header row and types from the first
// data row
func (r *Reader) loadColumns() error {
	var header *Row
	if r.config.WithHeader {
		var err error
		if header, err = r.seek(1); err != nil {
			return err
		}
	}
	data, err := r.seek(r.next)
	if err != nil {
		return err
	}

	n := 0
	if header != nil {
		n = header.MaxColumn()
	}
	if data != nil && data.MaxColumn() > n {
		n = data.MaxColumn()
	}

	r.columns = make([]Column, n)
	for column := 1; column <= n; column++ {
		name := "Column" + strconv.Itoa(column-1)
		if header != nil {
			if text, ok := header.Text(column); ok && text != "" {
				name = text
			}
		}
		var typ reflect.Type
		if data != nil {
			if v := data.Value(column); !IsNull(v) {
				typ = reflect.TypeOf(v)
			}
		}
		r.columns[column-1] = Column{Name: name, Type: typ}
	}
	return nil
}

// seek returns the row numbered n, or nil if the sheet has no such row. Rows
// before n are discarded; a later row stays pending.
func (r *Reader) seek(n int) (*Row, error) {
	for !r.exhausted && (r.pending == nil || r.pending.Number < n) {
		if !r.rows.Next() {
			r.exhausted = true
			r.pending = nil
			if err := r.rows.Err(); err != nil {
				return nil, newOpError("read", r.wb.ActiveSheet(), err)
			}
			break
		}
		r.pending = r.rows.Row()
	}
	if r.pending != nil && r.pending.Number == n {
		return r.pending, nil
	}
	return nil, nil
}

// Read advances to the next row. It returns false at the first missing row
// or on error, and keeps returning false afterwards; check Err.
func (r *Reader) Read() bool {
	if r.done || r.rows == nil {
		return false
	}

	row, err := r.seek(r.next)
	r.next++
	if err != nil || row == nil {
		r.err = err
		r.done = true
		r.values = nil
		return false
	}

	r.values = row.Values(len(r.columns))
	r.read++
	if r.config.NotifyAfter > 0 && r.read%int64(r.config.NotifyAfter) == 0 {
		r.config.logger().Debug("reader progress", "sheet", r.wb.ActiveSheet(), "rows", r.read)
	}
	r.config.notify(r.read)
	return true
}

// Err returns the error that ended the stream, if any.
func (r *Reader) Err() error {
	return r.err
}

// Close releases the engine. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.wb == nil {
		return nil
	}
	var err error
	if r.rows != nil {
		err = r.rows.Close()
	}
	if cerr := r.wb.Close(); err == nil {
		err = cerr
	}
	r.wb, r.rows, r.pending = nil, nil, nil
	r.done = true
	return err
}

// IsClosed reports whether the reader is not open.
func (r *Reader) IsClosed() bool {
	return r.wb == nil
}

// Columns returns the column descriptors derived on Open.
func (r *Reader) Columns() []Column {
	columns := make([]Column, len(r.columns))
	copy(columns, r.columns)
	return columns
}

// FieldCount returns the number of columns.
func (r *Reader) FieldCount() int {
	return len(r.columns)
}

// RowsRead returns the number of data rows returned by Read.
func (r *Reader) RowsRead() int64 {
	return r.read
}

// GetName returns the name of column i, empty if out of range.
func (r *Reader) GetName(i int) string {
	if i < 0 || i >= len(r.columns) {
		return ""
	}
	return r.columns[i].Name
}

// GetOrdinal returns the position of the named column, compared without
// case, or -1.
func (r *Reader) GetOrdinal(name string) int {
	if strings.TrimSpace(name) == "" {
		return -1
	}
	for i, c := range r.columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// GetValue returns field i of the current record, nil if out of range.
func (r *Reader) GetValue(i int) interface{} {
	if i < 0 || i >= len(r.values) {
		return nil
	}
	return r.values[i]
}

// Value returns the named field of the current record.
func (r *Reader) Value(name string) interface{} {
	return r.GetValue(r.GetOrdinal(name))
}

// GetValues copies the current record into dst and returns the number of
// values copied.
func (r *Reader) GetValues(dst []interface{}) int {
	return copy(dst, r.values)
}

// IsNull reports whether field i is out of range, nil or Null.
func (r *Reader) IsNull(i int) bool {
	return i < 0 || i >= len(r.values) || IsNull(r.values[i])
}

// GetFieldType returns the dynamic type of field i, nil for null.
func (r *Reader) GetFieldType(i int) reflect.Type {
	if r.IsNull(i) {
		return nil
	}
	return reflect.TypeOf(r.values[i])
}

// GetDataTypeName returns the type name of field i, empty for null.
func (r *Reader) GetDataTypeName(i int) string {
	if t := r.GetFieldType(i); t != nil {
		return t.Name()
	}
	return ""
}

// ValueAs returns field i when it holds exactly a T, the zero T otherwise.
// No numeric widening or string parsing takes place.
func ValueAs[T any](r *Reader, i int) T {
	v, _ := r.GetValue(i).(T)
	return v
}

func (r *Reader) GetBool(i int) bool { return ValueAs[bool](r, i) }
func (r *Reader) GetByte(i int) byte { return ValueAs[byte](r, i) }
func (r *Reader) GetInt16(i int) int16 { return ValueAs[int16](r, i) }
func (r *Reader) GetInt32(i int) int32 { return ValueAs[int32](r, i) }
func (r *Reader) GetInt64(i int) int64 { return ValueAs[int64](r, i) }
func (r *Reader) GetFloat32(i int) float32 { return ValueAs[float32](r, i) }
func (r *Reader) GetFloat64(i int) float64 { return ValueAs[float64](r, i) }
func (r *Reader) GetTime(i int) time.Time { return ValueAs[time.Time](r, i) }

// GetString returns field i as a string, formatting non-string values.
// Null fields yield "".
func (r *Reader) GetString(i int) string {
	v := r.GetValue(i)
	if IsNull(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// NextResult always returns false; a sheet has a single result set.
func (r *Reader) NextResult() bool { return false }

// Depth is always 0.
func (r *Reader) Depth() int { return 0 }

// RecordsAffected is always -1 for a read-only cursor.
func (r *Reader) RecordsAffected() int { return -1 }
