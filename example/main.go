package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/excel"
	"github.com/ideamans/go-sheettable/adapters/googlesheets"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run copies the first sheet of a Google spreadsheet into an Excel file,
// streaming row by row, then queries the copy.
func run() error {
	ctx := context.Background()

	src, err := googlesheets.NewSource(ctx, googlesheets.Config{
		SpreadsheetID: "your-spreadsheet-id",
		Credentials: &googlesheets.Credentials{
			JSONKeyFile: "./service-account.json",
			ReadOnly:    true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}
	dst := excel.File("./export.xlsx")

	config := sheettable.DefaultConfig()
	config.NotifyAfter = 500
	config.OnProgress = func(rows int64) {
		fmt.Printf("  %d rows copied\n", rows)
	}
	config.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reader := sheettable.NewReader(config)
	if err := reader.Open(ctx, src, 1); err != nil {
		return fmt.Errorf("failed to open sheet: %w", err)
	}
	defer reader.Close()

	fmt.Println("Columns:")
	for _, c := range reader.Columns() {
		fmt.Printf("  %s (%v)\n", c.Name, c.Type)
	}

	if err := sheettable.NewWriter(config).WriteSheet(ctx, dst, "Copy", reader); err != nil {
		return fmt.Errorf("failed to copy sheet: %w", err)
	}
	fmt.Printf("Copied %d rows to ./export.xlsx\n", reader.RowsRead())

	// Query the copy
	table, err := sheettable.NewTableReader(config).LoadTableByName(ctx, dst, "Copy", sheettable.TableOptions{
		StartRow:   1,
		WithHeader: true,
	})
	if err != nil {
		return fmt.Errorf("failed to load copy: %w", err)
	}

	results, err := table.Query(sheettable.Query{
		Conditions: []sheettable.Condition{
			{Column: "age", Operator: ">=", Value: 25},
			{Column: "age", Operator: "<=", Value: 35},
		},
		Limit: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to query: %w", err)
	}

	fmt.Printf("Found %d rows aged 25-35:\n", len(results))
	for _, record := range results {
		name := record.GetAsString("name", "Unknown")
		age := record.GetAsInt64("age", 0)
		fmt.Printf("  Row %d: %s (age: %d)\n", record.Key, name, age)
	}

	return nil
}
