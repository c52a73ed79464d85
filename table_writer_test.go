package sheettable_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/memory"
)

// removingBook records RemoveExisting calls on top of a memory book
type removingBook struct {
	*memory.Book
	removed int
	err     error
}

func (b *removingBook) RemoveExisting() error {
	b.removed++
	return b.err
}

func sheetValues(s *memory.Sheet) [][]interface{} {
	var values [][]interface{}
	for _, row := range s.Rows {
		values = append(values, append([]interface{}{row.Number}, row.Values(row.MaxColumn())...))
	}
	return values
}

func TestWriteTable(t *testing.T) {
	ctx := context.Background()
	book := memory.New()
	table := newPeopleTable(t)

	if err := sheettable.WriteTable(ctx, book, "Export", table); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	sheet := book.Sheet("Export")
	if sheet == nil {
		t.Fatal("sheet Export was not written")
	}
	want := [][]interface{}{
		{1, "Id", "Name", "Score"},
		{2, int64(1), "Alice", 9.5},
		{3, int64(2), "Bob", nil},
		{4, int64(3), "Carol", 7.0},
	}
	if got := sheetValues(sheet); !reflect.DeepEqual(got, want) {
		t.Errorf("sheet = %v, want %v", got, want)
	}
	if book.Closes() != book.Opens() {
		t.Errorf("Closes() = %d, want %d", book.Closes(), book.Opens())
	}
}

func TestTableWriter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	book := memory.New()
	table := newPeopleTable(t)

	if err := sheettable.WriteTable(ctx, book, "People", table); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	loaded, err := sheettable.LoadTable(ctx, book, 1, sheettable.TableOptions{StartRow: 1, WithHeader: true})
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
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
			if got != want {
				t.Errorf("Value(%d, %d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestTableWriter_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("removes existing destination", func(t *testing.T) {
		dst := &removingBook{Book: memory.New(), err: errors.New("locked")}
		if err := sheettable.WriteTable(ctx, dst, "Out", newPeopleTable(t)); err != nil {
			t.Fatalf("WriteTable() error = %v", err)
		}
		if dst.removed != 1 {
			t.Errorf("RemoveExisting called %d times, want 1", dst.removed)
		}
	})

	t.Run("progress", func(t *testing.T) {
		var calls []int64
		w := sheettable.NewTableWriter(&sheettable.Config{
			NotifyAfter: 2,
			OnProgress:  func(rows int64) { calls = append(calls, rows) },
		})
		table := sheettable.NewTable("N")
		table.AddColumn("n", nil)
		for i := 0; i < 5; i++ {
			table.Append(i)
		}
		if err := w.Write(ctx, memory.New(), "N", table); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if want := []int64{2, 4}; !reflect.DeepEqual(calls, want) {
			t.Errorf("progress calls = %v, want %v", calls, want)
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		book := memory.New()
		if err := sheettable.WriteTable(ctx, book, "Out", nil); !errors.Is(err, sheettable.ErrInvalidArgument) {
			t.Errorf("WriteTable(nil table) error = %v, want ErrInvalidArgument", err)
		}
		if err := sheettable.WriteTable(ctx, book, "", newPeopleTable(t)); !errors.Is(err, sheettable.ErrInvalidArgument) {
			t.Errorf("WriteTable(empty name) error = %v, want ErrInvalidArgument", err)
		}
		if book.Opens() != 0 {
			t.Errorf("Opens() = %d, want 0", book.Opens())
		}
	})
}
