package main

import (
	"strconv"
	"strings"
)

// BookSchema is the persisted layout of the books collection.
var BookSchema = Schema{
	Entity: "libros",
	Fields: []Field{
		{Name: "id", Kind: KindID},
		{Name: "ISBN", Kind: KindKey},
		{Name: "nombre", Kind: KindText},
		{Name: "autor", Kind: KindText},
		{Name: "stock", Kind: KindCount},
	},
}

// Book represents a lendable book entity.
type Book struct {
	ID     string
	ISBN   string
	Title  string
	Author string
	Stock  int
}

// BookUpdate holds the fields to change on a book. Nil means unchanged.
type BookUpdate struct {
	Title  *string
	Author *string
	Stock  *int
}

// IsEmpty reports whether the update changes nothing.
func (u BookUpdate) IsEmpty() bool {
	return u.Title == nil && u.Author == nil && u.Stock == nil
}

func (b Book) RecordID() string {
	return b.ID
}

func (b Book) apply(u BookUpdate) Book {
	if u.Title != nil {
		b.Title = strings.TrimSpace(*u.Title)
	}
	if u.Author != nil {
		b.Author = strings.TrimSpace(*u.Author)
	}
	if u.Stock != nil {
		b.Stock = *u.Stock
	}
	return b
}

// bookFromRow reads a book record. An unreadable or negative stock is
// taken as zero copies.
func bookFromRow(row Row) (Book, error) {
	row, err := BookSchema.Normalize(row)
	if err != nil {
		return Book{}, err
	}
	stock, _ := ParseCount(row["stock"])
	return Book{
		ID:     row["id"],
		ISBN:   row["ISBN"],
		Title:  row["nombre"],
		Author: row["autor"],
		Stock:  stock,
	}, nil
}

func bookToRow(b Book) Row {
	return Row{
		"id":     b.ID,
		"ISBN":   b.ISBN,
		"nombre": b.Title,
		"autor":  b.Author,
		"stock":  strconv.Itoa(b.Stock),
	}
}
