package common

import (
	"context"
	"errors"
	"math"
	"os"
	"reflect"
	"slices"
	"strings"
	"testing"

	sheettable "github.com/ideamans/go-sheettable"
)

// SourceTestCase represents a source under test. NewSource returns a source
// over an empty destination for every call. KeepsEmptyRows is set for
// engines that store a row whose values are all empty; file and hosted
// spreadsheets cannot tell such a row from a gap.
type SourceTestCase struct {
	Name           string
	NewSource      func(t *testing.T) sheettable.Source
	Description    string
	KeepsEmptyRows bool
}

// SampleRows is a sheet with a header, typed values and a gap at row 4
func SampleRows() []*sheettable.Row {
	return []*sheettable.Row{
		sheettable.NewRow(1).Add(1, "Id").Add(2, "Name").Add(3, "Score").Add(4, "Active"),
		sheettable.NewRow(2).Add(1, int64(1)).Add(2, "Alice").Add(3, 9.5).Add(4, true),
		sheettable.NewRow(3).Add(1, int64(2)).Add(2, "Bob").Add(4, false),
		sheettable.NewRow(5).Add(1, int64(4)).Add(2, "Dave").Add(3, 7.25),
	}
}

// SampleTable holds typed records, including strings that read like
// numbers or booleans and numbers beyond General-format precision
func SampleTable(t *testing.T) *sheettable.Table {
	t.Helper()
	table := sheettable.NewTable("People")
	for _, name := range []string{"Id", "Name", "Score", "Active", "Code", "Flag", "Ratio", "Big"} {
		if err := table.AddColumn(name, nil); err != nil {
			t.Fatalf("AddColumn(%q) error = %v", name, err)
		}
	}
	for _, values := range [][]interface{}{
		{int64(1), "Alice", 9.5, true, "007", "TRUE", 1.0 / 3, int64(1) << 60},
		{int64(2), "Bob", sheettable.Null, false, "123", "x", 2.0 / 3, int64(-1) << 55},
		{int64(3), "Carol", 8.0, true, "0.50", "false", 123456789.12345679, int64(1) << 62},
	} {
		if _, err := table.Append(values...); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	return table
}

// RunEngineSuite checks the behavior every engine shares
func RunEngineSuite(t *testing.T, tc SourceTestCase) {
	t.Run("WriteAndRead", func(t *testing.T) {
		testWriteAndRead(t, tc.NewSource(t))
	})
	t.Run("WriteOnce", func(t *testing.T) {
		testWriteOnce(t, tc.NewSource(t))
	})
	t.Run("ReadOnly", func(t *testing.T) {
		testReadOnly(t, tc.NewSource(t))
	})
	t.Run("TableRoundTrip", func(t *testing.T) {
		testTableRoundTrip(t, tc.NewSource(t))
	})
	t.Run("StreamRoundTrip", func(t *testing.T) {
		testStreamRoundTrip(t, tc.NewSource(t))
	})
	t.Run("EmptyRecord", func(t *testing.T) {
		testEmptyRecord(t, tc.NewSource(t), tc.KeepsEmptyRows)
	})
}

func writeSheet(t *testing.T, src sheettable.Source, sheet string, rows []*sheettable.Row) {
	t.Helper()
	ctx := context.Background()
	wb, err := sheettable.Load(ctx, src, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer wb.Close()

	if err := wb.CreateSheet(sheet); err != nil {
		t.Fatalf("CreateSheet() error = %v", err)
	}
	if err := wb.WriteRows(ctx, rows); err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}
	if err := wb.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

// rowValues flattens rows to their number followed by their values
func rowValues(rows []*sheettable.Row) [][]interface{} {
	var values [][]interface{}
	for _, row := range rows {
		values = append(values, append([]interface{}{row.Number}, row.Values(row.MaxColumn())...))
	}
	return values
}

func testWriteAndRead(t *testing.T, src sheettable.Source) {
	ctx := context.Background()
	writeSheet(t, src, "Data", SampleRows())

	wb, err := sheettable.Load(ctx, src, true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer wb.Close()

	names, err := wb.Sheets(ctx)
	if err != nil {
		t.Fatalf("Sheets() error = %v", err)
	}
	if !slices.Contains(names, "Data") {
		t.Fatalf("Sheets() = %v, want Data", names)
	}
	if err := wb.SelectSheet(ctx, "Data"); err != nil {
		t.Fatalf("SelectSheet() error = %v", err)
	}

	var rows []*sheettable.Row
	for row, err := range wb.GetRows(ctx) {
		if err != nil {
			t.Fatalf("GetRows() error = %v", err)
		}
		rows = append(rows, row)
	}
	if got, want := rowValues(rows), rowValues(SampleRows()); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}

	if err := wb.SelectSheet(ctx, "Sheet9"); !errors.Is(err, sheettable.ErrNotFound) {
		t.Errorf("SelectSheet(Sheet9) error = %v, want ErrNotFound", err)
	}
}

func testWriteOnce(t *testing.T, src sheettable.Source) {
	ctx := context.Background()
	engine, err := src.Open(ctx, false)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer engine.Close()

	if err := engine.WriteSheet(ctx, "Data", SampleRows()); err != nil {
		t.Fatalf("WriteSheet() error = %v", err)
	}
	if err := engine.WriteSheet(ctx, "Data", SampleRows()); !errors.Is(err, sheettable.ErrState) {
		t.Errorf("second WriteSheet() error = %v, want ErrState", err)
	}
}

func testReadOnly(t *testing.T, src sheettable.Source) {
	ctx := context.Background()
	writeSheet(t, src, "Data", SampleRows())

	engine, err := src.Open(ctx, true)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer engine.Close()

	if err := engine.WriteSheet(ctx, "Other", SampleRows()); !errors.Is(err, sheettable.ErrState) {
		t.Errorf("WriteSheet() on read-only engine error = %v, want ErrState", err)
	}
	if _, err := engine.Rows(ctx, "Missing"); !errors.Is(err, sheettable.ErrNotFound) {
		t.Errorf("Rows(Missing) error = %v, want ErrNotFound", err)
	}
}

func testTableRoundTrip(t *testing.T, src sheettable.Source) {
	ctx := context.Background()
	table := SampleTable(t)

	if err := sheettable.WriteTable(ctx, src, "People", table); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	reader := sheettable.NewTableReader(nil)
	loaded, err := reader.LoadTableByName(ctx, src, "People", sheettable.TableOptions{StartRow: 1, WithHeader: true})
	if err != nil {
		t.Fatalf("LoadTableByName() error = %v", err)
	}
	if !reflect.DeepEqual(loaded.ColumnNames(), table.ColumnNames()) {
		t.Errorf("columns = %v, want %v", loaded.ColumnNames(), table.ColumnNames())
	}
	if loaded.Len() != table.Len() {
		t.Fatalf("Len() = %d, want %d", loaded.Len(), table.Len())
	}
	for i := 0; i < table.Len(); i++ {
		for j := range table.ColumnNames() {
			want, got := table.Value(i, j), loaded.Value(i, j)
			if sheettable.IsNull(want) && sheettable.IsNull(got) {
				continue
			}
			if !sameValue(got, want) {
				t.Errorf("Value(%d, %d) = %v (%T), want %v (%T)", i, j, got, got, want, want)
			}
		}
	}

	n, err := reader.CountRowsByName(ctx, src, "People", true)
	if err != nil {
		t.Fatalf("CountRowsByName() error = %v", err)
	}
	if n != int64(table.Len()) {
		t.Errorf("CountRowsByName() = %d, want %d", n, table.Len())
	}
}

func testStreamRoundTrip(t *testing.T, src sheettable.Source) {
	ctx := context.Background()
	table := SampleTable(t)

	if err := sheettable.NewWriter(nil).WriteSheet(ctx, src, "Stream", table.Cursor()); err != nil {
		t.Fatalf("WriteSheet() error = %v", err)
	}

	r := sheettable.NewReader(nil)
	if err := r.OpenSheet(ctx, src, "Stream"); err != nil {
		t.Fatalf("OpenSheet() error = %v", err)
	}
	defer r.Close()

	if got, want := r.FieldCount(), len(table.ColumnNames()); got != want {
		t.Fatalf("FieldCount() = %d, want %d", got, want)
	}
	var names []string
	for r.Read() {
		names = append(names, r.GetString(r.GetOrdinal("name")))
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if want := []string{"Alice", "Bob", "Carol"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

// testEmptyRecord writes a record whose values are all null between two
// others. Engines that cannot store an empty row drop it, and the streaming
// reader then stops at the gap it leaves.
func testEmptyRecord(t *testing.T, src sheettable.Source, keepsEmptyRows bool) {
	ctx := context.Background()
	table := sheettable.NewTable("Sparse")
	table.AddColumn("Id", nil)
	table.AddColumn("Name", nil)
	table.Append(int64(1), "a")
	table.Append(sheettable.Null, sheettable.Null)
	table.Append(int64(3), "c")

	if err := sheettable.WriteTable(ctx, src, "Sparse", table); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	wantKeys, wantNames := []int{2, 4}, []string{"a"}
	if keepsEmptyRows {
		wantKeys, wantNames = []int{2, 3, 4}, []string{"a", "", "c"}
	}

	loaded, err := sheettable.NewTableReader(nil).LoadTableByName(ctx, src, "Sparse", sheettable.TableOptions{StartRow: 1, WithHeader: true})
	if err != nil {
		t.Fatalf("LoadTableByName() error = %v", err)
	}
	var keys []int
	for _, r := range loaded.Records() {
		keys = append(keys, r.Key)
	}
	if !reflect.DeepEqual(keys, wantKeys) {
		t.Errorf("record keys = %v, want %v", keys, wantKeys)
	}

	n, err := sheettable.NewTableReader(nil).CountRowsByName(ctx, src, "Sparse", true)
	if err != nil {
		t.Fatalf("CountRowsByName() error = %v", err)
	}
	if n != int64(len(wantKeys)) {
		t.Errorf("CountRowsByName() = %d, want %d", n, len(wantKeys))
	}

	r := sheettable.NewReader(nil)
	if err := r.OpenSheet(ctx, src, "Sparse"); err != nil {
		t.Fatalf("OpenSheet() error = %v", err)
	}
	defer r.Close()
	var names []string
	for r.Read() {
		names = append(names, r.GetString(1))
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("streamed names = %q, want %q", names, wantNames)
	}
}

// sameValue compares values the way engines round-trip them: an integral
// float may come back as int64. Everything else must keep its type and
// every digit.
func sameValue(got, want interface{}) bool {
	if reflect.DeepEqual(got, want) {
		return true
	}
	if f, ok := want.(float64); ok && f == math.Trunc(f) {
		if i, ok := got.(int64); ok {
			return float64(i) == f
		}
	}
	return false
}

// LoadEnvFile loads KEY=VALUE lines into the environment. Escaped newlines in
// TEST_CLIENT_PRIVATE_KEY are expanded.
func LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// Remove surrounding quotes if present
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}

		if key == "TEST_CLIENT_PRIVATE_KEY" {
			value = strings.ReplaceAll(value, "\\n", "\n")
		}

		os.Setenv(key, value)
	}

	return nil
}
