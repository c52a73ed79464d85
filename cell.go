package sheettable

import (
	"fmt"
	"math"
	"strconv"
)

// Null marks an explicitly empty value, the equivalent of a database null.
var Null = nullValue{}

type nullValue struct{}

func (nullValue) String() string { return "" }

// IsNull reports whether v is nil or the Null marker.
func IsNull(v interface{}) bool {
	return v == nil || v == Null
}

// Cell is a single value addressed by 1-based row and column.
type Cell struct {
	Row    int
	Column int
	Value  interface{}
}

// Row is a sparse row of cells. Cells keep insertion order and are not
// guaranteed to be sorted by column.
type Row struct {
	Number int
	Cells  []Cell
}

// NewRow creates an empty row with the given 1-based number.
func NewRow(number int) *Row {
	return &Row{Number: number}
}

// Add appends a cell at the given column. The cell inherits the row number.
func (r *Row) Add(column int, value interface{}) *Row {
	r.Cells = append(r.Cells, Cell{Row: r.Number, Column: column, Value: value})
	return r
}

// Cell looks up the cell at the given column.
func (r *Row) Cell(column int) (Cell, bool) {
	for _, c := range r.Cells {
		if c.Column == column {
			return c, true
		}
	}
	return Cell{}, false
}

// Value returns the value at the given column, or nil if there is no cell.
func (r *Row) Value(column int) interface{} {
	if c, ok := r.Cell(column); ok {
		return c.Value
	}
	return nil
}

// MaxColumn returns the highest column number present, 0 for an empty row.
func (r *Row) MaxColumn() int {
	n := 0
	for _, c := range r.Cells {
		if c.Column > n {
			n = c.Column
		}
	}
	return n
}

// Values projects the row onto columns 1..n. Missing cells are nil.
func (r *Row) Values(n int) []interface{} {
	values := make([]interface{}, n)
	for _, c := range r.Cells {
		if c.Column >= 1 && c.Column <= n {
			values[c.Column-1] = c.Value
		}
	}
	return values
}

// Text returns the cell text at the given column and whether a non-null
// value was present.
func (r *Row) Text(column int) (string, bool) {
	v := r.Value(column)
	if IsNull(v) {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

// ParseText converts cell text to int64, float64 or bool when it reads as
// one, and keeps the text otherwise. Engines that only see formatted text use
// it to recover typed values.
func ParseText(text string) interface{} {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		// Integral values beyond int64 precision stay float64
		if i := int64(f); float64(i) == f && math.Abs(f) < 1<<53 {
			return i
		}
		return f
	}
	switch text {
	case "TRUE", "true":
		return true
	case "FALSE", "false":
		return false
	}
	return text
}
