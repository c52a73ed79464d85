package sheettable

import (
	"fmt"
	"reflect"
	"strings"
)

// Column describes one column of a Table or Reader. Type is the dynamic type
// of the first non-null value seen, nil while unknown.
type Column struct {
	Name string
	Type reflect.Type
}

// Table is an in-memory table: ordered, uniquely named columns and an
// ordered list of records keyed by column name.
type Table struct {
	Name    string
	columns []Column
	index   map[string]int
	records []*Record
}

// NewTable creates an empty table.
func NewTable(name string) *Table {
	return &Table{
		Name:  name,
		index: make(map[string]int),
	}
}

// AddColumn appends a column. Names must be unique.
func (t *Table) AddColumn(name string, typ reflect.Type) error {
	if _, exists := t.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, Column{Name: name, Type: typ})
	return nil
}

// Columns returns a copy of the column list.
func (t *Table) Columns() []Column {
	columns := make([]Column, len(t.columns))
	copy(columns, t.columns)
	return columns
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the 0-based position of a column, -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Append adds a record with one value per column, in column order.
func (t *Table) Append(values ...interface{}) (*Record, error) {
	if len(values) != len(t.columns) {
		return nil, fmt.Errorf("%w: got %d values for %d columns", ErrInvalidArgument, len(values), len(t.columns))
	}
	record := NewRecord(0)
	for i, v := range values {
		record.Values[t.columns[i].Name] = v
	}
	t.appendRecord(record)
	return record, nil
}

// AppendRecord adds a record. Values for unknown columns are rejected.
func (t *Table) AppendRecord(record *Record) error {
	for name := range record.Values {
		if _, ok := t.index[name]; !ok {
			return fmt.Errorf("%w: unknown column %q", ErrInvalidArgument, name)
		}
	}
	if record.Values == nil {
		record.Values = make(map[string]interface{})
	}
	t.appendRecord(record)
	return nil
}

func (t *Table) appendRecord(record *Record) {
	for i := range t.columns {
		if t.columns[i].Type != nil {
			continue
		}
		if v := record.Values[t.columns[i].Name]; !IsNull(v) {
			t.columns[i].Type = reflect.TypeOf(v)
		}
	}
	t.records = append(t.records, record)
}

// Records returns the records in order. The slice is shared with the table.
func (t *Table) Records() []*Record {
	return t.records
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Value returns the value at the 0-based record and column positions.
func (t *Table) Value(row, col int) interface{} {
	if row < 0 || row >= len(t.records) || col < 0 || col >= len(t.columns) {
		return nil
	}
	return t.records[row].Values[t.columns[col].Name]
}

// Row returns the values of a record in column order.
func (t *Table) Row(row int) []interface{} {
	values := make([]interface{}, len(t.columns))
	for i := range t.columns {
		values[i] = t.Value(row, i)
	}
	return values
}

// String renders the table as tab separated text, mainly for debugging.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.ColumnNames(), "\t"))
	for i := range t.records {
		b.WriteByte('\n')
		for j, v := range t.Row(i) {
			if j > 0 {
				b.WriteByte('\t')
			}
			if !IsNull(v) {
				fmt.Fprintf(&b, "%v", v)
			}
		}
	}
	return b.String()
}

// Query returns the records matching q.
func (t *Table) Query(q Query) ([]*Record, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	return ApplyQuery(t.records, q), nil
}
