package excel

import "errors"

var (
	// ErrMissingFilePath is returned when neither a file path nor a stream is specified
	ErrMissingFilePath = errors.New("file path or stream is required")

	// ErrNoReadTarget is returned when a read-only engine has nothing to read from
	ErrNoReadTarget = errors.New("file path or reader is required for reading")

	// ErrNoWriteTarget is returned when a writable engine has nowhere to save
	ErrNoWriteTarget = errors.New("file path or writer is required for writing")
)
