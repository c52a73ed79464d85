package sheettable_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/memory"
)

func sampleBook() *memory.Book {
	return memory.New(
		memory.NewSheet("People",
			[]interface{}{"Id", "Name"},
			[]interface{}{int64(1), "Alice"},
			[]interface{}{int64(2), "Bob"},
			[]interface{}{int64(3), "Carol"},
		),
		memory.NewSheet("Empty"),
	)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("nil source", func(t *testing.T) {
		_, err := sheettable.Load(ctx, nil, true)
		if !errors.Is(err, sheettable.ErrInvalidArgument) {
			t.Errorf("Load() error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("open failure", func(t *testing.T) {
		book := sampleBook()
		book.OpenErr = sheettable.ErrIO
		_, err := sheettable.Load(ctx, book, true)
		if !errors.Is(err, sheettable.ErrIO) {
			t.Errorf("Load() error = %v, want ErrIO", err)
		}
		var opErr *sheettable.OpError
		if !errors.As(err, &opErr) || opErr.Op != "load" {
			t.Errorf("Load() error = %v, want OpError for load", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		book := sampleBook()
		if _, err := sheettable.Load(cancelled, book, true); !errors.Is(err, context.Canceled) {
			t.Errorf("Load() error = %v, want context.Canceled", err)
		}
		if book.Opens() != 0 {
			t.Errorf("Opens() = %d, want 0", book.Opens())
		}
	})
}

func TestWorkbook_SelectSheet(t *testing.T) {
	ctx := context.Background()
	wb, err := sheettable.Load(ctx, sampleBook(), true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer wb.Close()

	names, err := wb.Sheets(ctx)
	if err != nil {
		t.Fatalf("Sheets() error = %v", err)
	}
	if want := []string{"People", "Empty"}; !reflect.DeepEqual(names, want) {
		t.Errorf("Sheets() = %v, want %v", names, want)
	}

	var lazy []string
	for name, err := range wb.SheetNames(ctx) {
		if err != nil {
			t.Fatalf("SheetNames() error = %v", err)
		}
		lazy = append(lazy, name)
		break
	}
	if want := []string{"People"}; !reflect.DeepEqual(lazy, want) {
		t.Errorf("SheetNames() with break = %v, want %v", lazy, want)
	}

	tests := []struct {
		name    string
		sel     func() error
		want    error
		current string
	}{
		{"by name", func() error { return wb.SelectSheet(ctx, "Empty") }, nil, "Empty"},
		{"unknown name", func() error { return wb.SelectSheet(ctx, "Sheet9") }, sheettable.ErrNotFound, "Empty"},
		{"name is case-sensitive", func() error { return wb.SelectSheet(ctx, "people") }, sheettable.ErrNotFound, "Empty"},
		{"by index", func() error { return wb.SelectSheetIndex(ctx, 1) }, nil, "People"},
		{"index zero", func() error { return wb.SelectSheetIndex(ctx, 0) }, sheettable.ErrInvalidArgument, "People"},
		{"index past end", func() error { return wb.SelectSheetIndex(ctx, 3) }, sheettable.ErrNotFound, "People"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel()
			if tt.want == nil && err != nil {
				t.Fatalf("select error = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("select error = %v, want %v", err, tt.want)
			}
			if got := wb.ActiveSheet(); got != tt.current {
				t.Errorf("ActiveSheet() = %q, want %q", got, tt.current)
			}
		})
	}
}

func TestWorkbook_GetRows(t *testing.T) {
	ctx := context.Background()
	wb, err := sheettable.Load(ctx, sampleBook(), true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer wb.Close()

	if _, err := wb.Rows(ctx); !errors.Is(err, sheettable.ErrState) {
		t.Errorf("Rows() without selection error = %v, want ErrState", err)
	}
	if err := wb.SelectSheet(ctx, "People"); err != nil {
		t.Fatal(err)
	}

	var numbers []int
	for row, err := range wb.GetRows(ctx) {
		if err != nil {
			t.Fatalf("GetRows() error = %v", err)
		}
		numbers = append(numbers, row.Number)
	}
	if want := []int{1, 2, 3, 4}; !reflect.DeepEqual(numbers, want) {
		t.Errorf("row numbers = %v, want %v", numbers, want)
	}

	row, ok, err := wb.GetRow(ctx, 3)
	if err != nil || !ok {
		t.Fatalf("GetRow(3) = %v, %v, %v", row, ok, err)
	}
	if got := row.Value(2); got != "Bob" {
		t.Errorf("GetRow(3) Name = %v, want Bob", got)
	}
	if _, ok, err := wb.GetRow(ctx, 10); ok || err != nil {
		t.Errorf("GetRow(10) = %v, %v, want false, nil", ok, err)
	}
}

func TestWorkbook_WriteRows(t *testing.T) {
	ctx := context.Background()
	rows := []*sheettable.Row{sheettable.NewRow(1).Add(1, "x")}

	t.Run("read-only", func(t *testing.T) {
		wb, _ := sheettable.Load(ctx, sampleBook(), true)
		defer wb.Close()
		if err := wb.CreateSheet("Out"); !errors.Is(err, sheettable.ErrState) {
			t.Errorf("CreateSheet() error = %v, want ErrState", err)
		}
		if err := wb.WriteRows(ctx, rows); !errors.Is(err, sheettable.ErrState) {
			t.Errorf("WriteRows() error = %v, want ErrState", err)
		}
	})

	t.Run("write once", func(t *testing.T) {
		book := sampleBook()
		wb, _ := sheettable.Load(ctx, book, false)
		defer wb.Close()

		if err := wb.CreateSheet(""); !errors.Is(err, sheettable.ErrInvalidArgument) {
			t.Errorf("CreateSheet(\"\") error = %v, want ErrInvalidArgument", err)
		}
		if err := wb.CreateSheet("Out"); err != nil {
			t.Fatalf("CreateSheet() error = %v", err)
		}
		if err := wb.WriteRows(ctx, rows); err != nil {
			t.Fatalf("WriteRows() error = %v", err)
		}
		if err := wb.WriteRows(ctx, rows); !errors.Is(err, sheettable.ErrState) {
			t.Errorf("second WriteRows() error = %v, want ErrState", err)
		}
		if got := book.Writes("Out"); got != 1 {
			t.Errorf("Writes(Out) = %d, want 1", got)
		}
	})
}

func TestWorkbook_Close(t *testing.T) {
	ctx := context.Background()
	book := sampleBook()
	wb, err := sheettable.Load(ctx, book, true)
	if err != nil {
		t.Fatal(err)
	}

	if err := wb.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := wb.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if book.Closes() != 1 {
		t.Errorf("Closes() = %d, want 1", book.Closes())
	}
	if _, err := wb.Sheets(ctx); !errors.Is(err, sheettable.ErrState) {
		t.Errorf("Sheets() after Close error = %v, want ErrState", err)
	}
}
