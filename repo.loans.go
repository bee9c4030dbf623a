package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoanStorage defines possible operations on loan entity. Loans are only
// ever read and rewritten as a whole collection.
type LoanStorage interface {
	Load(ctx context.Context) ([]Loan, error)
	Save(ctx context.Context, loans []Loan) error
}

// NewLoanStore provides a loan store persisted at path.
func NewLoanStore(logger *zap.Logger, path string, boltTimeout time.Duration) (*Store[Loan], error) {
	storage, err := NewRecordStorage(path, LoanSchema, boltTimeout)
	if err != nil {
		return nil, err
	}
	return NewStore(logger, storage, LoanSchema, loanFromRow, loanToRow), nil
}
