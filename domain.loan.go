package main

import (
	"strings"
	"time"
)

// LoanStatus is the lifecycle state of a loan as persisted.
type LoanStatus string

const (
	StatusOnLoan   LoanStatus = "prestado"
	StatusReturned LoanStatus = "devuelto"
	StatusOverdue  LoanStatus = "atrasado"
)

// UnknownDisplay replaces the name or title of a record that no longer exists.
const UnknownDisplay = "Desconocido"

// LoanSchema is the persisted layout of the loans collection.
var LoanSchema = Schema{
	Entity: "prestamos",
	Fields: []Field{
		{Name: "id_prestamo", Kind: KindKey},
		{Name: "id_usuario", Kind: KindText},
		{Name: "id_libro", Kind: KindText},
		{Name: "fecha_prestamo", Kind: KindDate},
		{Name: "fecha_devolucion_esperada", Kind: KindDate},
		{Name: "estado", Kind: KindStatus},
	},
}

// Loan links one borrower (by document) to one book (by ISBN).
type Loan struct {
	ID               string
	BorrowerDocument string
	BookISBN         string
	LoanDate         time.Time
	DueDate          time.Time
	Status           LoanStatus
}

// JoinedLoan is the read-only view of a loan with the display
// fields of its borrower and book resolved.
type JoinedLoan struct {
	LoanID   string
	Borrower string
	Book     string
	LoanDate string
	DueDate  string
	Status   LoanStatus
}

func (l Loan) RecordID() string {
	return l.ID
}

// IsOverdueOn reports whether an on-loan loan was due strictly before day.
// A loan without a due date never becomes overdue.
func (l Loan) IsOverdueOn(day time.Time) bool {
	return l.Status == StatusOnLoan && !l.DueDate.IsZero() && l.DueDate.Before(CalendarDay(day))
}

// ParseLoanStatus validates a persisted status value.
func ParseLoanStatus(v string) (LoanStatus, error) {
	switch s := LoanStatus(strings.TrimSpace(v)); s {
	case StatusOnLoan, StatusReturned, StatusOverdue:
		return s, nil
	case "":
		return "", missingFieldError("estado")
	default:
		return "", invalidFieldError("estado " + string(s))
	}
}

func loanFromRow(row Row) (Loan, error) {
	row, err := LoanSchema.Normalize(row)
	if err != nil {
		return Loan{}, err
	}
	loanDate, err := ParseDate(row["fecha_prestamo"])
	if err != nil {
		return Loan{}, err
	}
	dueDate, err := ParseDate(row["fecha_devolucion_esperada"])
	if err != nil {
		return Loan{}, err
	}
	status, err := ParseLoanStatus(row["estado"])
	if err != nil {
		return Loan{}, err
	}
	return Loan{
		ID:               row["id_prestamo"],
		BorrowerDocument: row["id_usuario"],
		BookISBN:         row["id_libro"],
		LoanDate:         loanDate,
		DueDate:          dueDate,
		Status:           status,
	}, nil
}

func loanToRow(l Loan) Row {
	return Row{
		"id_prestamo":               l.ID,
		"id_usuario":                l.BorrowerDocument,
		"id_libro":                  l.BookISBN,
		"fecha_prestamo":            FormatDate(l.LoanDate),
		"fecha_devolucion_esperada": FormatDate(l.DueDate),
		"estado":                    string(l.Status),
	}
}
