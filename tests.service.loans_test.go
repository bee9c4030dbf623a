package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This file contains unit tests for the loan service on JSON files.

type loanDesk struct {
	dir       string
	clock     *MockClocker
	borrowers *BorrowerStore
	books     *BookStore
	loans     *Store[Loan]
	service   *LoanService
}

// newLoanDesk wires a loan service over JSON files seeded with the given
// contents. An empty content leaves the file absent.
func newLoanDesk(t *testing.T, borrowersJSON, booksJSON, loansJSON string) *loanDesk {
	dir := t.TempDir()
	seed := func(name, content string) string {
		path := filepath.Join(dir, name)
		if content != "" {
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		}
		return path
	}
	borrowers, err := NewBorrowerStore(nopLogger(), seed("usuarios.json", borrowersJSON), 0)
	require.NoError(t, err)
	books, err := NewBookStore(nopLogger(), seed("libros.json", booksJSON), 0)
	require.NoError(t, err)
	loans, err := NewLoanStore(nopLogger(), seed("prestamos.json", loansJSON), 0)
	require.NoError(t, err)

	clock := NewMockClocker()
	return &loanDesk{
		dir:       dir,
		clock:     clock,
		borrowers: borrowers,
		books:     books,
		loans:     loans,
		service:   NewLoanService(nopLogger(), clock, 1, loans, borrowers, books),
	}
}

func (d *loanDesk) read(t *testing.T, name string) string {
	data, err := os.ReadFile(filepath.Join(d.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func (d *loanDesk) stock(t *testing.T, isbn string) int {
	book, err := d.books.FindByISBN(context.TODO(), isbn)
	require.NoError(t, err)
	return book.Stock
}

const (
	yeimyJSON = `[{"id": "1", "documento": "1001", "nombres": "Yeimy", "apellidos": "Bayona", "email": "y@b.co"}]`
	bookJSON  = `[{"id": "1", "ISBN": "978", "nombre": "Rayuela", "autor": "Cortázar", "stock": "2"}]`
)

func TestIssueLoan(t *testing.T) {
	desk := newLoanDesk(t, yeimyJSON, bookJSON, "")

	loan, err := desk.service.IssueLoan(context.TODO(), "1001", "978")
	require.NoError(t, err)
	assert.Equal(t, "1", loan.ID)
	assert.Equal(t, StatusOnLoan, loan.Status)
	assert.Equal(t, "2023-07-02", FormatDate(loan.LoanDate))
	assert.Equal(t, "2023-07-03", FormatDate(loan.DueDate))
	assert.Equal(t, 1, desk.stock(t, "978"))

	stored, err := desk.loans.Load(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, []Loan{loan}, stored)

	second, err := desk.service.IssueLoan(context.TODO(), "1001", "978")
	require.NoError(t, err)
	assert.Equal(t, "2", second.ID)
	assert.Equal(t, 0, desk.stock(t, "978"))
}

func TestIssueLoan_NoStock(t *testing.T) {
	desk := newLoanDesk(t, yeimyJSON, `[{"id": "1", "ISBN": "978", "nombre": "Rayuela", "stock": "0"}]`, "")
	before := desk.read(t, "libros.json")

	_, err := desk.service.IssueLoan(context.TODO(), "1001", "978")
	assert.True(t, errors.Is(err, ErrNoStockAvailable))
	assert.Equal(t, before, desk.read(t, "libros.json"))
	assert.Equal(t, "", desk.read(t, "prestamos.json"))
}

func TestIssueLoan_UnknownReferences(t *testing.T) {
	desk := newLoanDesk(t, yeimyJSON, bookJSON, "")

	_, err := desk.service.IssueLoan(context.TODO(), "9999", "978")
	assert.True(t, errors.Is(err, ErrBorrowerNotFound))

	_, err = desk.service.IssueLoan(context.TODO(), "1001", "000")
	assert.True(t, errors.Is(err, ErrBookNotFound))

	assert.Equal(t, 2, desk.stock(t, "978"))
	assert.Equal(t, "", desk.read(t, "prestamos.json"))
}

func TestIssueLoan_LoansUnreadableLeavesStock(t *testing.T) {
	desk := newLoanDesk(t, yeimyJSON, bookJSON, "")
	failing := &MockLoanStorage{
		LoadFunc: func(ctx context.Context) ([]Loan, error) {
			return nil, &StorageError{Op: "decode", Path: "prestamos.json", Err: ErrMalformedContent}
		},
	}
	service := NewLoanService(nopLogger(), desk.clock, 1, failing, desk.borrowers, desk.books)

	_, err := service.IssueLoan(context.TODO(), "1001", "978")
	assert.True(t, errors.Is(err, ErrMalformedContent))
	assert.Equal(t, 2, desk.stock(t, "978"))
}

func TestIssueLoan_LoanWriteFailureKeepsDecrement(t *testing.T) {
	desk := newLoanDesk(t, yeimyJSON, bookJSON, "")
	failing := &MockLoanStorage{
		LoadFunc: func(ctx context.Context) ([]Loan, error) { return []Loan{}, nil },
		SaveFunc: func(ctx context.Context, loans []Loan) error {
			return &StorageError{Op: "rename", Path: "prestamos.json", Err: os.ErrPermission}
		},
	}
	service := NewLoanService(nopLogger(), desk.clock, 1, failing, desk.borrowers, desk.books)

	_, err := service.IssueLoan(context.TODO(), "1001", "978")
	assert.True(t, errors.Is(err, ErrStorage))
	assert.Equal(t, 1, desk.stock(t, "978"), "the two writes are not atomic")
}

func TestReturnLoan(t *testing.T) {
	desk := newLoanDesk(t, yeimyJSON, bookJSON, "")
	loan, err := desk.service.IssueLoan(context.TODO(), "1001", "978")
	require.NoError(t, err)
	require.Equal(t, 1, desk.stock(t, "978"))

	returned, err := desk.service.ReturnLoan(context.TODO(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, returned.Status)
	assert.Equal(t, 2, desk.stock(t, "978"))

	_, err = desk.service.ReturnLoan(context.TODO(), loan.ID)
	assert.True(t, errors.Is(err, ErrAlreadyReturned))
	assert.Equal(t, 2, desk.stock(t, "978"), "stock is incremented once")

	_, err = desk.service.ReturnLoan(context.TODO(), "42")
	assert.True(t, errors.Is(err, ErrLoanNotFound))
}

func TestReturnLoan_OverdueLoan(t *testing.T) {
	loans := `[{"id_prestamo": "1", "id_usuario": "1001", "id_libro": "978", "fecha_prestamo": "2023-06-01", "fecha_devolucion_esperada": "2023-06-02", "estado": "atrasado"}]`
	desk := newLoanDesk(t, yeimyJSON, bookJSON, loans)

	returned, err := desk.service.ReturnLoan(context.TODO(), "1")
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, returned.Status)
	assert.Equal(t, 3, desk.stock(t, "978"))
}

func TestReturnLoan_BookGone(t *testing.T) {
	loans := `[{"id_prestamo": "1", "id_usuario": "1001", "id_libro": "555", "fecha_prestamo": "2023-07-01", "fecha_devolucion_esperada": "2023-07-02", "estado": "prestado"}]`
	desk := newLoanDesk(t, yeimyJSON, bookJSON, loans)
	booksBefore, loansBefore := desk.read(t, "libros.json"), desk.read(t, "prestamos.json")

	_, err := desk.service.ReturnLoan(context.TODO(), "1")
	assert.True(t, errors.Is(err, ErrBookNotFound))
	assert.Equal(t, booksBefore, desk.read(t, "libros.json"))
	assert.Equal(t, loansBefore, desk.read(t, "prestamos.json"))
}

func TestReturnLoan_BadStockCountsAsZero(t *testing.T) {
	loans := `[{"id_prestamo": "1", "id_usuario": "1001", "id_libro": "978", "fecha_prestamo": "2023-07-01", "fecha_devolucion_esperada": "2023-07-02", "estado": "prestado"}]`
	desk := newLoanDesk(t, yeimyJSON, `[{"id": "1", "ISBN": "978", "stock": "varios"}]`, loans)

	_, err := desk.service.ReturnLoan(context.TODO(), "1")
	require.NoError(t, err)
	assert.Equal(t, 1, desk.stock(t, "978"))
}

func TestListLoans_MarksOverdueAndPersists(t *testing.T) {
	loans := `[
		{"id_prestamo": "1", "id_usuario": "1001", "id_libro": "978", "fecha_prestamo": "2023-06-29", "fecha_devolucion_esperada": "2023-06-30", "estado": "prestado"},
		{"id_prestamo": "2", "id_usuario": "1001", "id_libro": "978", "fecha_prestamo": "2023-07-01", "fecha_devolucion_esperada": "2023-07-02", "estado": "prestado"},
		{"id_prestamo": "3", "id_usuario": "1001", "id_libro": "978", "fecha_prestamo": "2023-06-01", "fecha_devolucion_esperada": "2023-06-02", "estado": "devuelto"}
	]`
	desk := newLoanDesk(t, yeimyJSON, bookJSON, loans)

	joined, err := desk.service.ListLoans(context.TODO())
	require.NoError(t, err)
	require.Len(t, joined, 3)
	assert.Equal(t, JoinedLoan{
		LoanID:   "1",
		Borrower: "Yeimy Bayona",
		Book:     "Rayuela",
		LoanDate: "2023-06-29",
		DueDate:  "2023-06-30",
		Status:   StatusOverdue,
	}, joined[0])
	assert.Equal(t, StatusOnLoan, joined[1].Status, "due today is not overdue")
	assert.Equal(t, StatusReturned, joined[2].Status)

	stored, err := desk.loans.Load(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, StatusOverdue, stored[0].Status)
	assert.Equal(t, StatusOnLoan, stored[1].Status)
}

func TestListLoans_NoChangeNoWrite(t *testing.T) {
	desk := newLoanDesk(t, yeimyJSON, bookJSON, "")
	stored := []Loan{{ID: "1", BorrowerDocument: "1001", BookISBN: "978", Status: StatusReturned}}
	loans := &MockLoanStorage{
		LoadFunc: func(ctx context.Context) ([]Loan, error) { return stored, nil },
		SaveFunc: func(ctx context.Context, loans []Loan) error {
			t.Fatal("loans must not be saved when nothing changed")
			return nil
		},
	}
	service := NewLoanService(nopLogger(), desk.clock, 1, loans, desk.borrowers, desk.books)

	joined, err := service.ListLoans(context.TODO())
	require.NoError(t, err)
	assert.Len(t, joined, 1)
}

func TestListLoans_DanglingReferences(t *testing.T) {
	loans := `[{"id_prestamo": "1", "id_usuario": "7777", "id_libro": "555", "fecha_prestamo": "2023-07-02", "fecha_devolucion_esperada": "2023-07-03", "estado": "prestado"}]`
	desk := newLoanDesk(t, yeimyJSON, bookJSON, loans)

	joined, err := desk.service.ListLoans(context.TODO())
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, UnknownDisplay, joined[0].Borrower)
	assert.Equal(t, UnknownDisplay, joined[0].Book)
}

func TestListReturns(t *testing.T) {
	loans := `[
		{"id_prestamo": "1", "id_usuario": "1001", "id_libro": "978", "fecha_prestamo": "2023-06-01", "fecha_devolucion_esperada": "2023-06-02", "estado": "devuelto"},
		{"id_prestamo": "2", "id_usuario": "1001", "id_libro": "978", "fecha_prestamo": "2023-06-01", "fecha_devolucion_esperada": "2023-06-02", "estado": "prestado"}
	]`
	desk := newLoanDesk(t, yeimyJSON, bookJSON, loans)
	before := desk.read(t, "prestamos.json")

	joined, err := desk.service.ListReturns(context.TODO())
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, "1", joined[0].LoanID)
	assert.Equal(t, "Yeimy Bayona", joined[0].Borrower)
	assert.Equal(t, before, desk.read(t, "prestamos.json"), "listing returns never writes")
}

func TestMarkOverdue(t *testing.T) {
	now := time.Date(2023, 7, 2, 8, 0, 0, 0, time.UTC)
	loans := []Loan{
		{ID: "1", Status: StatusOnLoan, DueDate: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Status: StatusOnLoan},
		{ID: "3", Status: StatusOverdue, DueDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	assert.Equal(t, 1, MarkOverdue(loans, now))
	assert.Equal(t, StatusOverdue, loans[0].Status)
	assert.Equal(t, StatusOnLoan, loans[1].Status)
	assert.Equal(t, 0, MarkOverdue(loans, now), "marking is idempotent")
}

func TestJoinLoans_FirstRecordWins(t *testing.T) {
	borrowers := []Borrower{{Document: "1", Names: "Ana"}, {Document: "1", Names: "Eva"}}
	books := []Book{{ISBN: "9", Title: "Uno"}, {ISBN: "9", Title: "Dos"}}
	joined := JoinLoans([]Loan{{ID: "1", BorrowerDocument: "1", BookISBN: "9", Status: StatusOnLoan}}, borrowers, books)
	require.Len(t, joined, 1)
	assert.Equal(t, "Ana", joined[0].Borrower)
	assert.Equal(t, "Uno", joined[0].Book)
	assert.Equal(t, "", joined[0].DueDate)
}
