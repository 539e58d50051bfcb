package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotWritable is returned by Write when the medium is not mounted read-write.
	ErrNotWritable = errors.New("storage medium not writable")
	// ErrNotReadable is returned by Read when the medium is not mounted at all.
	ErrNotReadable = errors.New("storage medium not readable")
	// ErrNotFound is returned by Read when the file does not exist.
	ErrNotFound = errors.New("file does not exist")
	// ErrEmpty is returned by Read when the file exists but holds no bytes.
	ErrEmpty = errors.New("file is empty")
)

// IOError reports a failure of the underlying filesystem during a read or write.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
