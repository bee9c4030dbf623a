package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BorrowerStorage defines possible operations on borrower entity.
type BorrowerStorage interface {
	List(ctx context.Context) ([]Borrower, error)
	FindByDocument(ctx context.Context, document string) (Borrower, error)
	Create(ctx context.Context, borrower Borrower) (Borrower, error)
	Update(ctx context.Context, document string, update BorrowerUpdate) (Borrower, error)
	Delete(ctx context.Context, document string) error
}

var _ BorrowerStorage = (*BorrowerStore)(nil) // ensure BorrowerStore implements BorrowerStorage.

// BorrowerStore keeps borrowers addressed by their document number.
type BorrowerStore struct {
	logger *zap.Logger
	store  *Store[Borrower]
}

// NewBorrowerStore provides a borrower store persisted at path.
func NewBorrowerStore(logger *zap.Logger, path string, boltTimeout time.Duration) (*BorrowerStore, error) {
	storage, err := NewRecordStorage(path, BorrowerSchema, boltTimeout)
	if err != nil {
		return nil, err
	}
	return &BorrowerStore{
		logger: logger,
		store:  NewStore(logger, storage, BorrowerSchema, borrowerFromRow, borrowerToRow),
	}, nil
}

// List returns all borrowers in file order.
func (bs *BorrowerStore) List(ctx context.Context) ([]Borrower, error) {
	return bs.store.Load(ctx)
}

// FindByDocument returns the borrower owning document or ErrBorrowerNotFound.
func (bs *BorrowerStore) FindByDocument(ctx context.Context, document string) (Borrower, error) {
	borrowers, err := bs.store.Load(ctx)
	if err != nil {
		return Borrower{}, err
	}
	if i := indexBorrower(borrowers, document); i >= 0 {
		return borrowers[i], nil
	}
	return Borrower{}, ErrBorrowerNotFound
}

// Create registers a new borrower with the next free identifier. The
// document number must not be registered yet.
func (bs *BorrowerStore) Create(ctx context.Context, borrower Borrower) (Borrower, error) {
	borrower.Document = strings.TrimSpace(borrower.Document)
	if borrower.Document == "" {
		return Borrower{}, missingFieldError("documento")
	}
	borrowers, err := bs.store.Load(ctx)
	if err != nil {
		return Borrower{}, err
	}
	if indexBorrower(borrowers, borrower.Document) >= 0 {
		LoggerFromContext(ctx, bs.logger).Warn("store: borrower already registered", zap.String("borrower.document", borrower.Document))
		return Borrower{}, fmt.Errorf("%w: document %q", ErrAlreadyExists, borrower.Document)
	}

	borrower = borrower.apply(BorrowerUpdate{Names: &borrower.Names, Surnames: &borrower.Surnames, Email: &borrower.Email})
	borrower.ID = strconv.Itoa(NextID(borrowers))
	borrowers = append(borrowers, borrower)
	if err = bs.store.Save(ctx, borrowers); err != nil {
		return Borrower{}, err
	}
	LoggerFromContext(ctx, bs.logger).Info("store: borrower created", zap.String("borrower.id", borrower.ID), zap.String("borrower.document", borrower.Document))
	return borrower, nil
}

// Update applies the non nil fields of update to the borrower owning document.
func (bs *BorrowerStore) Update(ctx context.Context, document string, update BorrowerUpdate) (Borrower, error) {
	borrowers, err := bs.store.Load(ctx)
	if err != nil {
		return Borrower{}, err
	}
	i := indexBorrower(borrowers, document)
	if i < 0 {
		return Borrower{}, ErrBorrowerNotFound
	}
	borrowers[i] = borrowers[i].apply(update)
	if err = bs.store.Save(ctx, borrowers); err != nil {
		return Borrower{}, err
	}
	LoggerFromContext(ctx, bs.logger).Info("store: borrower updated", zap.String("borrower.document", document))
	return borrowers[i], nil
}

// Delete removes the borrower owning document. Loans keep their reference.
func (bs *BorrowerStore) Delete(ctx context.Context, document string) error {
	borrowers, err := bs.store.Load(ctx)
	if err != nil {
		return err
	}
	i := indexBorrower(borrowers, document)
	if i < 0 {
		return ErrBorrowerNotFound
	}
	borrowers = append(borrowers[:i], borrowers[i+1:]...)
	if err = bs.store.Save(ctx, borrowers); err != nil {
		return err
	}
	LoggerFromContext(ctx, bs.logger).Info("store: borrower deleted", zap.String("borrower.document", document))
	return nil
}

func indexBorrower(borrowers []Borrower, document string) int {
	document = strings.TrimSpace(document)
	for i, b := range borrowers {
		if b.Document == document {
			return i
		}
	}
	return -1
}
