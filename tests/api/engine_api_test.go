package api

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/excel"
	"github.com/ideamans/go-sheettable/adapters/googlesheets"
	"github.com/ideamans/go-sheettable/adapters/memory"
	"github.com/ideamans/go-sheettable/tests/common"
)

// getTestSources returns all sources to run the engine suite against
func getTestSources(t *testing.T) []common.SourceTestCase {
	// Load .env file if it exists
	envPath := filepath.Join("..", "..", ".env")
	if _, err := os.Stat(envPath); err == nil {
		common.LoadEnvFile(envPath)
	}

	sources := []common.SourceTestCase{
		{
			Name: "Memory",
			NewSource: func(t *testing.T) sheettable.Source {
				return memory.New()
			},
			Description:    "in-memory book",
			KeepsEmptyRows: true,
		},
		{
			Name: "Excel",
			NewSource: func(t *testing.T) sheettable.Source {
				src, err := excel.New(&excel.Config{FilePath: filepath.Join(t.TempDir(), "api_test.xlsx")})
				if err != nil {
					t.Fatalf("Failed to create Excel source: %v", err)
				}
				return src
			},
			Description: "Excel file in a temporary directory",
		},
	}

	// Test Google Sheets if configured
	spreadsheetID := os.Getenv("TEST_GOOGLE_SHEET_ID")
	if spreadsheetID == "" {
		return sources
	}
	config := googlesheets.Config{SpreadsheetID: spreadsheetID}

	if jsonPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); jsonPath != "" {
		// If path is relative, make it absolute
		if !filepath.IsAbs(jsonPath) {
			jsonPath = filepath.Join("..", "..", jsonPath)
		}
		sources = append(sources, common.SourceTestCase{
			Name: "GoogleSheets-JSON",
			NewSource: func(t *testing.T) sheettable.Source {
				cfg := config
				cfg.Credentials = &googlesheets.Credentials{JSONKeyFile: jsonPath}
				src, err := googlesheets.NewSource(context.Background(), cfg)
				if err != nil {
					t.Fatalf("Failed to create Google Sheets source: %v", err)
				}
				return src
			},
			Description: "Google Sheets with JSON file auth",
		})
	}

	email := os.Getenv("TEST_CLIENT_EMAIL")
	privateKey := os.Getenv("TEST_CLIENT_PRIVATE_KEY")
	if email != "" && privateKey != "" {
		// In CI, the private key might have literal \n instead of actual newlines
		if !strings.Contains(privateKey, "\n") && strings.Contains(privateKey, "\\n") {
			privateKey = strings.ReplaceAll(privateKey, "\\n", "\n")
		}
		sources = append(sources, common.SourceTestCase{
			Name: "GoogleSheets-EmailKey",
			NewSource: func(t *testing.T) sheettable.Source {
				src, err := googlesheets.NewWithServiceAccountKey(context.Background(), config, email, privateKey)
				if err != nil {
					t.Fatalf("Failed to create Google Sheets source: %v", err)
				}
				return src
			},
			Description: "Google Sheets with email/key auth",
		})
	}

	return sources
}

func TestEngineConformance(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping API test in short mode")
	}

	for _, tc := range getTestSources(t) {
		t.Run(tc.Name, func(t *testing.T) {
			t.Logf("Testing engine with %s", tc.Description)
			common.RunEngineSuite(t, tc)
		})
	}
}
