package main

import "strings"

// BorrowerSchema is the persisted layout of the borrowers collection.
var BorrowerSchema = Schema{
	Entity: "usuarios",
	Fields: []Field{
		{Name: "id", Kind: KindID},
		{Name: "documento", Kind: KindKey},
		{Name: "nombres", Kind: KindText},
		{Name: "apellidos", Kind: KindText},
		{Name: "email", Kind: KindText},
	},
}

// Borrower represents a person registered to take loans.
type Borrower struct {
	ID       string
	Document string
	Names    string
	Surnames string
	Email    string
}

// BorrowerUpdate holds the fields to change on a borrower. Nil means unchanged.
type BorrowerUpdate struct {
	Names    *string
	Surnames *string
	Email    *string
}

// IsEmpty reports whether the update changes nothing.
func (u BorrowerUpdate) IsEmpty() bool {
	return u.Names == nil && u.Surnames == nil && u.Email == nil
}

func (b Borrower) RecordID() string {
	return b.ID
}

// FullName is the display name used in joined loan views.
func (b Borrower) FullName() string {
	return strings.TrimSpace(b.Names + " " + b.Surnames)
}

func (b Borrower) apply(u BorrowerUpdate) Borrower {
	if u.Names != nil {
		b.Names = strings.TrimSpace(*u.Names)
	}
	if u.Surnames != nil {
		b.Surnames = strings.TrimSpace(*u.Surnames)
	}
	if u.Email != nil {
		b.Email = strings.TrimSpace(*u.Email)
	}
	return b
}

func borrowerFromRow(row Row) (Borrower, error) {
	row, err := BorrowerSchema.Normalize(row)
	if err != nil {
		return Borrower{}, err
	}
	return Borrower{
		ID:       row["id"],
		Document: row["documento"],
		Names:    row["nombres"],
		Surnames: row["apellidos"],
		Email:    row["email"],
	}, nil
}

func borrowerToRow(b Borrower) Row {
	return Row{
		"id":        b.ID,
		"documento": b.Document,
		"nombres":   b.Names,
		"apellidos": b.Surnames,
		"email":     b.Email,
	}
}
