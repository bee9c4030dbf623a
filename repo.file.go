package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Codec translates a collection of rows from and to a byte stream.
type Codec interface {
	Decode(r io.Reader, schema Schema) ([]Row, error)
	Encode(w io.Writer, schema Schema, rows []Row) error
}

type fileStorage struct {
	path   string
	schema Schema
	codec  Codec
}

// NewFileStorage provides a storage persisting rows to a single flat file.
func NewFileStorage(path string, schema Schema, codec Codec) RecordStorage {
	return &fileStorage{path: path, schema: schema, codec: codec}
}

func (fs *fileStorage) Path() string {
	return fs.path
}

// Load reads the whole file. A missing file is an empty collection.
func (fs *fileStorage) Load(_ context.Context) ([]Row, error) {
	f, err := os.Open(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "open", Path: fs.path, Err: err}
	}
	defer f.Close()

	rows, err := fs.codec.Decode(f, fs.schema)
	if err != nil {
		return nil, &StorageError{Op: "decode", Path: fs.path, Err: fmt.Errorf("%w: %v", ErrMalformedContent, err)}
	}
	return rows, nil
}

// Save writes the collection into a temporary file first, then renames it
// over the previous one so a failed write never leaves a truncated file.
func (fs *fileStorage) Save(_ context.Context, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return &StorageError{Op: "mkdir", Path: fs.path, Err: err}
	}
	tmp := fs.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &StorageError{Op: "create", Path: tmp, Err: err}
	}
	if err = fs.codec.Encode(f, fs.schema, rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return &StorageError{Op: "encode", Path: fs.path, Err: err}
	}
	if err = f.Close(); err != nil {
		os.Remove(tmp)
		return &StorageError{Op: "close", Path: tmp, Err: err}
	}
	if err = os.Rename(tmp, fs.path); err != nil {
		return &StorageError{Op: "rename", Path: fs.path, Err: err}
	}
	return nil
}
