package sheettable

// Cursor is a forward-only record source. Read advances to the next record
// and returns false once the source is exhausted; GetValue reads a field of
// the current record. Reader implements Cursor, so a sheet can be piped
// straight into a Writer.
type Cursor interface {
	FieldCount() int
	GetName(i int) string
	GetValue(i int) interface{}
	Read() bool
	Close() error
}

// Cursor returns a cursor over the table's records.
func (t *Table) Cursor() Cursor {
	return &tableCursor{table: t, pos: -1}
}

type tableCursor struct {
	table  *Table
	pos    int
	closed bool
}

func (c *tableCursor) FieldCount() int {
	return len(c.table.columns)
}

func (c *tableCursor) GetName(i int) string {
	if i < 0 || i >= len(c.table.columns) {
		return ""
	}
	return c.table.columns[i].Name
}

func (c *tableCursor) GetValue(i int) interface{} {
	return c.table.Value(c.pos, i)
}

func (c *tableCursor) Read() bool {
	if c.closed || c.pos >= len(c.table.records) {
		return false
	}
	c.pos++
	return c.pos < len(c.table.records)
}

func (c *tableCursor) Close() error {
	c.closed = true
	return nil
}
