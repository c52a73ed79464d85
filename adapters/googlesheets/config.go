package googlesheets

import "errors"

// DefaultColumns is the column span read and cleared on every sheet
const DefaultColumns = "A:ZZ"

// ErrMissingSpreadsheetID is returned when no spreadsheet is configured
var ErrMissingSpreadsheetID = errors.New("spreadsheet ID is required")

// Config represents configuration specific to Google Sheets adapter
type Config struct {
	SpreadsheetID string
	Columns       string // A1 column span such as "A:ZZ"; DefaultColumns when empty

	// Credentials authenticate the source. When nil, authentication comes
	// from the client options given to NewSource, or from Application
	// Default Credentials.
	Credentials *Credentials
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.SpreadsheetID == "" {
		return ErrMissingSpreadsheetID
	}
	if c.Credentials != nil {
		return c.Credentials.validate()
	}
	return nil
}

func (c Config) columns() string {
	if c.Columns == "" {
		return DefaultColumns
	}
	return c.Columns
}
