package sheettable

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a caller passes an unusable argument,
	// such as a sheet index below 1.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a named sheet or row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIO is returned when the source is missing, unreadable or locked.
	ErrIO = errors.New("i/o failure")

	// ErrFormat is returned when the engine cannot parse the package.
	ErrFormat = errors.New("invalid spreadsheet format")

	// ErrState is returned for operations on a closed reader or workbook and
	// for capabilities an engine does not implement.
	ErrState = errors.New("invalid state")

	// ErrDuplicateColumn is returned when a table already has a column with
	// the same name.
	ErrDuplicateColumn = fmt.Errorf("%w: duplicate column", ErrInvalidArgument)
)

// OpError records the workbook operation and sheet that failed.
type OpError struct {
	Op    string // "load", "select", "rows", "write", ...
	Sheet string
	Err   error
}

func (e *OpError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s sheet %q: %v", e.Op, e.Sheet, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func newOpError(op, sheet string, err error) *OpError {
	return &OpError{
		Op:    op,
		Sheet: sheet,
		Err:   err,
	}
}
