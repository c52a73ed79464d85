package excel

import "io"

// Config holds configuration for Excel workbooks
type Config struct {
	FilePath     string    // Path to the Excel file, read or written
	TemplatePath string    // Optional workbook used as the base when writing
	Reader       io.Reader // Read from this stream instead of FilePath
	Writer       io.Writer // Write to this stream instead of FilePath
	Password     string    // Password for encrypted workbooks
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.FilePath == "" && c.Reader == nil && c.Writer == nil {
		return ErrMissingFilePath
	}
	return nil
}
