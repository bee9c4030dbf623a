package main

import (
	"context"

	"go.uber.org/zap"
)

// Store is a typed collection persisted through a RecordStorage. Rows are
// normalized and parsed against the entity schema when crossing this layer.
type Store[T Identifiable] struct {
	logger  *zap.Logger
	storage RecordStorage
	schema  Schema
	decode  func(Row) (T, error)
	encode  func(T) Row
}

// NewStore provides a typed store over the given storage.
func NewStore[T Identifiable](logger *zap.Logger, storage RecordStorage, schema Schema, decode func(Row) (T, error), encode func(T) Row) *Store[T] {
	return &Store[T]{
		logger:  logger,
		storage: storage,
		schema:  schema,
		decode:  decode,
		encode:  encode,
	}
}

// Path returns the location of the underlying data file.
func (s *Store[T]) Path() string {
	return s.storage.Path()
}

// Load returns every record in file order.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	rows, err := s.storage.Load(ctx)
	if err != nil {
		LoggerFromContext(ctx, s.logger).Error("store: failed to load records", zap.String("entity", s.schema.Entity), zap.String("path", s.storage.Path()), zap.Error(err))
		return nil, err
	}
	records := make([]T, 0, len(rows))
	for i, row := range rows {
		record, err := s.decode(row)
		if err != nil {
			err = malformed("decode", s.storage.Path(), "%s record %d: %v", s.schema.Entity, i+1, err)
			LoggerFromContext(ctx, s.logger).Error("store: invalid record", zap.String("entity", s.schema.Entity), zap.Int("position", i+1), zap.Error(err))
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Save overwrites the collection with records.
func (s *Store[T]) Save(ctx context.Context, records []T) error {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, s.encode(record))
	}
	if err := s.storage.Save(ctx, rows); err != nil {
		LoggerFromContext(ctx, s.logger).Error("store: failed to save records", zap.String("entity", s.schema.Entity), zap.String("path", s.storage.Path()), zap.Error(err))
		return err
	}
	LoggerFromContext(ctx, s.logger).Debug("store: records saved", zap.String("entity", s.schema.Entity), zap.Int("count", len(records)))
	return nil
}
