package sheettable

import (
	"io"
	"log/slog"
)

// DefaultNotifyAfter is the progress interval used when no config is given.
const DefaultNotifyAfter = 10_000

// ProgressFunc receives the 1-based number of data rows processed so far.
type ProgressFunc func(rows int64)

// Config represents configuration for readers and writers
type Config struct {
	WithHeader  bool         // First row holds column names (default: true)
	NotifyAfter int          // Progress interval in rows, <= 0 disables (default: 10000)
	OnProgress  ProgressFunc // Called synchronously every NotifyAfter rows
	Logger      *slog.Logger // Debug events; discarded when nil
}

// DefaultConfig returns the configuration used when nil is passed.
func DefaultConfig() *Config {
	return &Config{
		WithHeader:  true,
		NotifyAfter: DefaultNotifyAfter,
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger
}

func (c *Config) notify(rows int64) {
	if c.NotifyAfter > 0 && c.OnProgress != nil && rows%int64(c.NotifyAfter) == 0 {
		c.OnProgress(rows)
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
