package main

import (
	"context"
	"fmt"
	"log"
	"os"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/excel"
	"github.com/ideamans/go-sheettable/adapters/xls"
)

func main() {
	ctx := context.Background()

	// 1. Build a table in memory
	table := sheettable.NewTable("users")
	for _, name := range []string{"id", "name", "department", "age", "active"} {
		if err := table.AddColumn(name, nil); err != nil {
			log.Fatalf("Failed to add column: %v", err)
		}
	}
	users := [][]interface{}{
		{int64(1), "Alice Johnson", "Engineering", int64(30), true},
		{int64(2), "Bob Smith", "Marketing", int64(25), true},
		{int64(3), "Charlie Brown", "Engineering", int64(35), false},
		{int64(4), "Diana Prince", "Sales", sheettable.Null, true},
	}
	for _, values := range users {
		if _, err := table.Append(values...); err != nil {
			log.Fatalf("Failed to append row: %v", err)
		}
	}

	// 2. Export it; an optional template seeds formatting and extra sheets
	config := &excel.Config{FilePath: "./example_data.xlsx"}
	if len(os.Args) > 2 {
		config.TemplatePath = os.Args[2]
	}
	dst, err := excel.New(config)
	if err != nil {
		log.Fatalf("Failed to create Excel source: %v", err)
	}

	fmt.Println("Exporting users...")
	if err := sheettable.WriteTable(ctx, dst, "users", table); err != nil {
		log.Fatalf("Failed to export: %v", err)
	}

	// 3. Load it back and query
	count, err := sheettable.CountRows(ctx, dst, 1, true)
	if err != nil {
		log.Fatalf("Failed to count rows: %v", err)
	}
	fmt.Printf("Sheet has %d data rows\n", count)

	loaded, err := sheettable.LoadTable(ctx, dst, 1, sheettable.TableOptions{StartRow: 1, WithHeader: true})
	if err != nil {
		log.Fatalf("Failed to load: %v", err)
	}
	engineers, err := loaded.Query(sheettable.Query{
		Conditions: []sheettable.Condition{
			{Column: "department", Operator: "==", Value: "Engineering"},
			{Column: "active", Operator: "==", Value: true},
		},
	})
	if err != nil {
		log.Fatalf("Failed to query: %v", err)
	}
	fmt.Printf("Active engineers: %d\n", len(engineers))
	for _, r := range engineers {
		fmt.Printf("  Row %d: %s\n", r.Key, r.GetAsString("name", ""))
	}

	// 4. Stream it with a reader
	reader := sheettable.NewReader(nil)
	if err := reader.Open(ctx, dst, 1); err != nil {
		log.Fatalf("Failed to open reader: %v", err)
	}
	defer reader.Close()

	name, age := reader.GetOrdinal("Name"), reader.GetOrdinal("Age")
	for reader.Read() {
		if reader.IsNull(age) {
			fmt.Printf("  %s (age unknown)\n", reader.GetString(name))
			continue
		}
		fmt.Printf("  %s (%d)\n", reader.GetString(name), reader.GetInt64(age))
	}
	if err := reader.Err(); err != nil {
		log.Fatalf("Failed to read: %v", err)
	}

	// 5. Legacy .xls workbooks are read with the xls source
	if len(os.Args) > 1 {
		legacy, err := sheettable.LoadTable(ctx, xls.File(os.Args[1]), 1, sheettable.TableOptions{StartRow: 1, WithHeader: true})
		if err != nil {
			log.Fatalf("Failed to load %s: %v", os.Args[1], err)
		}
		fmt.Printf("%s: %d rows, columns %v\n", os.Args[1], legacy.Len(), legacy.ColumnNames())
	}
}
