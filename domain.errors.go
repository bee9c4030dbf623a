package main

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrBorrowerNotFound = fmt.Errorf("borrower %w", ErrNotFound)
	ErrBookNotFound     = fmt.Errorf("book %w", ErrNotFound)
	ErrLoanNotFound     = fmt.Errorf("loan %w", ErrNotFound)
	ErrAlreadyExists    = errors.New("already exists")
	ErrNoStockAvailable = errors.New("no stock available")
	ErrAlreadyReturned  = errors.New("loan already returned")

	ErrStorage          = errors.New("storage failure")
	ErrMalformedContent = errors.New("malformed content")
)

type (
	missingFieldError string
	invalidFieldError string
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

func (i invalidFieldError) Error() string {
	return string(i) + " is not valid"
}

// StorageError reports a failure to read, decode, encode or write
// one of the data files. It always matches ErrStorage.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStorage) hold for any StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func malformed(op, path string, format string, args ...any) *StorageError {
	return &StorageError{
		Op:   op,
		Path: path,
		Err:  fmt.Errorf("%w: %s", ErrMalformedContent, fmt.Sprintf(format, args...)),
	}
}
