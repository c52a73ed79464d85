package sheettable_test

import (
	"errors"
	"reflect"
	"testing"

	sheettable "github.com/ideamans/go-sheettable"
)

func newPeopleTable(t *testing.T) *sheettable.Table {
	t.Helper()
	table := sheettable.NewTable("People")
	for _, name := range []string{"Id", "Name", "Score"} {
		if err := table.AddColumn(name, nil); err != nil {
			t.Fatalf("AddColumn(%q) error = %v", name, err)
		}
	}
	rows := [][]interface{}{
		{int64(1), "Alice", 9.5},
		{int64(2), "Bob", sheettable.Null},
		{int64(3), "Carol", 7.0},
	}
	for _, values := range rows {
		if _, err := table.Append(values...); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	return table
}

func TestTable(t *testing.T) {
	table := newPeopleTable(t)

	if err := table.AddColumn("Name", nil); !errors.Is(err, sheettable.ErrDuplicateColumn) {
		t.Errorf("AddColumn(duplicate) error = %v, want ErrDuplicateColumn", err)
	}
	if _, err := table.Append(int64(4)); !errors.Is(err, sheettable.ErrInvalidArgument) {
		t.Errorf("Append(short) error = %v, want ErrInvalidArgument", err)
	}

	r := sheettable.NewRecord(0)
	r.Values["Unknown"] = 1
	if err := table.AppendRecord(r); !errors.Is(err, sheettable.ErrInvalidArgument) {
		t.Errorf("AppendRecord(unknown column) error = %v, want ErrInvalidArgument", err)
	}

	if got := table.ColumnIndex("Score"); got != 2 {
		t.Errorf("ColumnIndex(Score) = %d, want 2", got)
	}
	if got := table.ColumnIndex("Missing"); got != -1 {
		t.Errorf("ColumnIndex(Missing) = %d, want -1", got)
	}

	types := []reflect.Kind{reflect.Int64, reflect.String, reflect.Float64}
	for i, c := range table.Columns() {
		if c.Type == nil || c.Type.Kind() != types[i] {
			t.Errorf("column %q type = %v, want %v", c.Name, c.Type, types[i])
		}
	}

	if got := table.Value(1, 2); got != sheettable.Null {
		t.Errorf("Value(1, 2) = %v, want Null", got)
	}
	if got := table.Value(5, 0); got != nil {
		t.Errorf("Value(5, 0) = %v, want nil", got)
	}

	want := "Id\tName\tScore\n1\tAlice\t9.5\n2\tBob\t\n3\tCarol\t7"
	if got := table.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTable_Query(t *testing.T) {
	table := newPeopleTable(t)

	records, err := table.Query(sheettable.Query{
		Conditions: []sheettable.Condition{{Column: "Score", Operator: ">", Value: 8}},
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 1 || records[0].GetAsString("Name", "") != "Alice" {
		t.Errorf("Query() = %v, want Alice only", records)
	}

	_, err = table.Query(sheettable.Query{Limit: -1})
	if !errors.Is(err, sheettable.ErrInvalidArgument) {
		t.Errorf("Query() error = %v, want ErrInvalidArgument", err)
	}
}

func TestTable_Cursor(t *testing.T) {
	table := newPeopleTable(t)
	c := table.Cursor()

	if c.FieldCount() != 3 {
		t.Errorf("FieldCount() = %d, want 3", c.FieldCount())
	}
	if got := c.GetName(1); got != "Name" {
		t.Errorf("GetName(1) = %q, want Name", got)
	}
	if got := c.GetName(3); got != "" {
		t.Errorf("GetName(3) = %q, want empty", got)
	}

	var names []interface{}
	for c.Read() {
		names = append(names, c.GetValue(1))
	}
	if want := []interface{}{"Alice", "Bob", "Carol"}; !reflect.DeepEqual(names, want) {
		t.Errorf("values = %v, want %v", names, want)
	}
	if c.Read() {
		t.Error("Read() after end returned true")
	}

	c = table.Cursor()
	c.Close()
	if c.Read() {
		t.Error("Read() after Close returned true")
	}
}
