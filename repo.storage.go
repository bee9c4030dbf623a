package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format selects how a collection is persisted.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatBolt Format = "bolt"
)

// RecordStorage loads and saves a whole collection of rows. Implementations
// rewrite the complete collection on every Save.
type RecordStorage interface {
	Load(ctx context.Context) ([]Row, error)
	Save(ctx context.Context, rows []Row) error
	Path() string
}

// ParseFormat validates a configured storage format.
func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case FormatJSON, FormatCSV, FormatBolt:
		return f, nil
	default:
		return "", invalidFieldError("storage format " + v)
	}
}

// FormatFromPath infers the storage format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".db", ".bolt":
		return FormatBolt, nil
	default:
		return "", invalidFieldError("storage file extension of " + path)
	}
}

// NewRecordStorage provides the storage backend matching the extension of path.
// Bolt files hold one bucket per entity so several collections can share a file.
func NewRecordStorage(path string, schema Schema, boltTimeout time.Duration) (RecordStorage, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return NewFileStorage(path, schema, jsonCodec{}), nil
	case FormatCSV:
		return NewFileStorage(path, schema, csvCodec{}), nil
	case FormatBolt:
		return NewBoltStorage(path, schema, boltTimeout), nil
	}
	return nil, fmt.Errorf("unsupported storage format %q", format)
}
