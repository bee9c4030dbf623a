package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

type boltStorage struct {
	path    string
	schema  Schema
	timeout time.Duration
}

// NewBoltStorage provides a bolt-based storage keeping the collection in the
// bucket named after the schema entity.
func NewBoltStorage(path string, schema Schema, timeout time.Duration) RecordStorage {
	return &boltStorage{path: path, schema: schema, timeout: timeout}
}

// OpenBoltDB opens the database file, waiting at most timeout for the file lock.
func OpenBoltDB(path string, timeout time.Duration, readOnly bool) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout, ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	return db, nil
}

func (bs *boltStorage) Path() string {
	return bs.path
}

func (bs *boltStorage) bucket() []byte {
	return []byte(bs.schema.Entity)
}

// Load retrieves the rows of the bucket in key order. A missing file or
// bucket is an empty collection and the file is not created.
func (bs *boltStorage) Load(_ context.Context) ([]Row, error) {
	if _, err := os.Stat(bs.path); errors.Is(err, os.ErrNotExist) {
		return []Row{}, nil
	}
	db, err := OpenBoltDB(bs.path, bs.timeout, true)
	if err != nil {
		return nil, &StorageError{Op: "open", Path: bs.path, Err: err}
	}
	defer db.Close()

	rows := []Row{}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bs.bucket())
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var row Row
			if errU := rowsJSON.Unmarshal(v, &row); errU != nil {
				return fmt.Errorf("%w: %s key %x: %v", ErrMalformedContent, bs.schema.Entity, k, errU)
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "view", Path: bs.path, Err: err}
	}
	return rows, nil
}

// Save replaces the whole bucket within a single bolt transaction.
func (bs *boltStorage) Save(_ context.Context, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(bs.path), 0o700); err != nil {
		return &StorageError{Op: "mkdir", Path: bs.path, Err: err}
	}
	db, err := OpenBoltDB(bs.path, bs.timeout, false)
	if err != nil {
		return &StorageError{Op: "open", Path: bs.path, Err: err}
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		if errD := tx.DeleteBucket(bs.bucket()); errD != nil && errD != bolt.ErrBucketNotFound {
			return errD
		}
		b, errB := tx.CreateBucket(bs.bucket())
		if errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", bs.schema.Entity, errB)
		}
		for i, row := range rows {
			obj := make(Row, len(bs.schema.Fields))
			for _, col := range bs.schema.Columns() {
				obj[col] = row[col]
			}
			value, errM := rowsJSON.Marshal(obj)
			if errM != nil {
				return errM
			}
			if errP := b.Put(positionKey(i+1), value); errP != nil {
				return errP
			}
		}
		return nil
	})
	if err != nil {
		return &StorageError{Op: "update", Path: bs.path, Err: err}
	}
	return nil
}

// positionKey encodes a 1-based position as a big-endian key so the
// cursor walks records in insertion order.
func positionKey(pos int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(pos))
	return key
}
