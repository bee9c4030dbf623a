package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LoanServiceProvider is the loan desk: issuing, returning and reporting loans.
type LoanServiceProvider interface {
	IssueLoan(ctx context.Context, borrowerDocument, bookISBN string) (Loan, error)
	ReturnLoan(ctx context.Context, loanID string) (Loan, error)
	ListLoans(ctx context.Context) ([]JoinedLoan, error)
	ListReturns(ctx context.Context) ([]JoinedLoan, error)
}

var _ LoanServiceProvider = (*LoanService)(nil) // ensure LoanService implements LoanServiceProvider.

// LoanService coordinates the borrower, book and loan stores. None of its
// operations is atomic across stores.
type LoanService struct {
	logger    *zap.Logger
	clock     Clocker
	period    time.Duration
	loans     LoanStorage
	borrowers BorrowerStorage
	books     BookStorage
}

// NewLoanService provides a loan service. A loan is due periodDays after it is issued.
func NewLoanService(logger *zap.Logger, clock Clocker, periodDays int, loans LoanStorage, borrowers BorrowerStorage, books BookStorage) *LoanService {
	return &LoanService{
		logger:    logger,
		clock:     clock,
		period:    time.Duration(periodDays) * 24 * time.Hour,
		loans:     loans,
		borrowers: borrowers,
		books:     books,
	}
}

// IssueLoan lends one copy of the book to the borrower. The stock is
// decremented and saved before the loan is appended; if the second write
// fails the copy stays out of stock without a loan record.
func (ls *LoanService) IssueLoan(ctx context.Context, borrowerDocument, bookISBN string) (Loan, error) {
	borrowerDocument = strings.TrimSpace(borrowerDocument)
	bookISBN = strings.TrimSpace(bookISBN)

	if _, err := ls.borrowers.FindByDocument(ctx, borrowerDocument); err != nil {
		return Loan{}, err
	}
	books, err := ls.books.List(ctx)
	if err != nil {
		return Loan{}, err
	}
	i := IndexBook(books, bookISBN)
	if i < 0 {
		return Loan{}, ErrBookNotFound
	}
	if books[i].Stock <= 0 {
		LoggerFromContext(ctx, ls.logger).Info("service: loan refused, no stock", zap.String("book.isbn", bookISBN))
		return Loan{}, ErrNoStockAvailable
	}
	loans, err := ls.loans.Load(ctx)
	if err != nil {
		return Loan{}, err
	}

	books[i].Stock--
	if err = ls.books.Save(ctx, books); err != nil {
		return Loan{}, err
	}

	day := CalendarDay(ls.clock.Now())
	loan := Loan{
		ID:               strconv.Itoa(len(loans) + 1),
		BorrowerDocument: borrowerDocument,
		BookISBN:         bookISBN,
		LoanDate:         day,
		DueDate:          day.Add(ls.period),
		Status:           StatusOnLoan,
	}
	loans = append(loans, loan)
	if err = ls.loans.Save(ctx, loans); err != nil {
		LoggerFromContext(ctx, ls.logger).Error("service: stock decremented but loan not recorded",
			zap.String("book.isbn", bookISBN),
			zap.String("borrower.document", borrowerDocument),
			zap.Error(err),
		)
		return Loan{}, err
	}
	LoggerFromContext(ctx, ls.logger).Info("service: loan issued",
		zap.String("loan.id", loan.ID),
		zap.String("borrower.document", borrowerDocument),
		zap.String("book.isbn", bookISBN),
		zap.Int("book.stock", books[i].Stock),
	)
	return loan, nil
}

// ReturnLoan marks the loan returned and puts the copy back in stock.
// Nothing is saved when the book of the loan no longer exists.
func (ls *LoanService) ReturnLoan(ctx context.Context, loanID string) (Loan, error) {
	loanID = strings.TrimSpace(loanID)
	loans, err := ls.loans.Load(ctx)
	if err != nil {
		return Loan{}, err
	}
	l := -1
	for i := range loans {
		if loans[i].ID == loanID {
			l = i
			break
		}
	}
	if l < 0 {
		return Loan{}, ErrLoanNotFound
	}
	if loans[l].Status == StatusReturned {
		return Loan{}, ErrAlreadyReturned
	}
	loans[l].Status = StatusReturned

	books, err := ls.books.List(ctx)
	if err != nil {
		return Loan{}, err
	}
	b := IndexBook(books, loans[l].BookISBN)
	if b < 0 {
		LoggerFromContext(ctx, ls.logger).Warn("service: return refused, book no longer exists", zap.String("loan.id", loanID), zap.String("book.isbn", loans[l].BookISBN))
		return Loan{}, ErrBookNotFound
	}
	books[b].Stock++

	if err = ls.books.Save(ctx, books); err != nil {
		return Loan{}, err
	}
	if err = ls.loans.Save(ctx, loans); err != nil {
		LoggerFromContext(ctx, ls.logger).Error("service: stock incremented but return not recorded", zap.String("loan.id", loanID), zap.Error(err))
		return Loan{}, err
	}
	LoggerFromContext(ctx, ls.logger).Info("service: loan returned", zap.String("loan.id", loanID), zap.String("book.isbn", books[b].ISBN), zap.Int("book.stock", books[b].Stock))
	return loans[l], nil
}

// ListLoans moves late loans to overdue, saves that change, and returns
// every loan joined with its borrower and book.
func (ls *LoanService) ListLoans(ctx context.Context) ([]JoinedLoan, error) {
	loans, err := ls.loans.Load(ctx)
	if err != nil {
		return nil, err
	}
	if changed := MarkOverdue(loans, ls.clock.Now()); changed > 0 {
		if err = ls.loans.Save(ctx, loans); err != nil {
			return nil, err
		}
		LoggerFromContext(ctx, ls.logger).Info("service: loans marked overdue", zap.Int("count", changed))
	}
	return ls.join(ctx, loans)
}

// ListReturns returns the returned loans joined with their borrower and book.
func (ls *LoanService) ListReturns(ctx context.Context) ([]JoinedLoan, error) {
	loans, err := ls.loans.Load(ctx)
	if err != nil {
		return nil, err
	}
	returned := make([]Loan, 0, len(loans))
	for _, l := range loans {
		if l.Status == StatusReturned {
			returned = append(returned, l)
		}
	}
	return ls.join(ctx, returned)
}

func (ls *LoanService) join(ctx context.Context, loans []Loan) ([]JoinedLoan, error) {
	borrowers, err := ls.borrowers.List(ctx)
	if err != nil {
		return nil, err
	}
	books, err := ls.books.List(ctx)
	if err != nil {
		return nil, err
	}
	return JoinLoans(loans, borrowers, books), nil
}

// MarkOverdue moves every on-loan loan due strictly before now's calendar
// day to overdue, in place, and returns how many changed.
func MarkOverdue(loans []Loan, now time.Time) int {
	changed := 0
	for i := range loans {
		if loans[i].IsOverdueOn(now) {
			loans[i].Status = StatusOverdue
			changed++
		}
	}
	return changed
}

// JoinLoans projects loans into their display view, keeping loan order.
// Missing borrowers or books are shown as UnknownDisplay.
func JoinLoans(loans []Loan, borrowers []Borrower, books []Book) []JoinedLoan {
	names := make(map[string]string, len(borrowers))
	for _, b := range borrowers {
		if _, ok := names[b.Document]; !ok {
			names[b.Document] = b.FullName()
		}
	}
	titles := make(map[string]string, len(books))
	for _, b := range books {
		if _, ok := titles[b.ISBN]; !ok {
			titles[b.ISBN] = b.Title
		}
	}

	joined := make([]JoinedLoan, 0, len(loans))
	for _, l := range loans {
		name, ok := names[l.BorrowerDocument]
		if !ok {
			name = UnknownDisplay
		}
		title, ok := titles[l.BookISBN]
		if !ok {
			title = UnknownDisplay
		}
		joined = append(joined, JoinedLoan{
			LoanID:   l.ID,
			Borrower: name,
			Book:     title,
			LoanDate: FormatDate(l.LoanDate),
			DueDate:  FormatDate(l.DueDate),
			Status:   l.Status,
		})
	}
	return joined
}
