package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This file contains unit tests for the borrower and book stores on flat files.

func newTestBorrowerStore(t *testing.T, format Format) *BorrowerStore {
	store, err := NewBorrowerStore(nopLogger(), filepath.Join(t.TempDir(), "usuarios."+string(format)), 0)
	require.NoError(t, err)
	return store
}

func newTestBookStore(t *testing.T, format Format) *BookStore {
	store, err := NewBookStore(nopLogger(), filepath.Join(t.TempDir(), "libros."+string(format)), 0)
	require.NoError(t, err)
	return store
}

func TestBorrowerStore_CreateAssignsSequentialIDs(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatCSV} {
		t.Run(string(format), func(t *testing.T) {
			store := newTestBorrowerStore(t, format)
			ctx := context.TODO()

			first, err := store.Create(ctx, Borrower{Document: " 1001 ", Names: "Yeimy ", Surnames: "Bayona", Email: "y@b.co"})
			require.NoError(t, err)
			assert.Equal(t, Borrower{ID: "1", Document: "1001", Names: "Yeimy", Surnames: "Bayona", Email: "y@b.co"}, first)

			second, err := store.Create(ctx, Borrower{Document: "1002"})
			require.NoError(t, err)
			assert.Equal(t, "2", second.ID)

			all, err := store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []Borrower{first, second}, all)
		})
	}
}

func TestBorrowerStore_CreateDuplicateDocument(t *testing.T) {
	store := newTestBorrowerStore(t, FormatJSON)
	ctx := context.TODO()
	_, err := store.Create(ctx, Borrower{Document: "1001", Names: "Yeimy"})
	require.NoError(t, err)

	_, err = store.Create(ctx, Borrower{Document: "1001", Names: "Otra"})
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Yeimy", all[0].Names)
}

func TestBorrowerStore_CreateWithoutDocument(t *testing.T) {
	_, err := newTestBorrowerStore(t, FormatJSON).Create(context.TODO(), Borrower{Names: "Nadie"})
	var missing missingFieldError
	assert.True(t, errors.As(err, &missing))
}

func TestBorrowerStore_UpdateAndDelete(t *testing.T) {
	store := newTestBorrowerStore(t, FormatCSV)
	ctx := context.TODO()
	_, err := store.Create(ctx, Borrower{Document: "1001", Names: "Yeimy", Surnames: "Bayona", Email: "old@b.co"})
	require.NoError(t, err)

	email := "new@b.co"
	updated, err := store.Update(ctx, "1001", BorrowerUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "new@b.co", updated.Email)
	assert.Equal(t, "Yeimy", updated.Names)

	_, err = store.Update(ctx, "9999", BorrowerUpdate{Email: &email})
	assert.True(t, errors.Is(err, ErrBorrowerNotFound))

	require.NoError(t, store.Delete(ctx, "1001"))
	_, err = store.FindByDocument(ctx, "1001")
	assert.True(t, errors.Is(err, ErrBorrowerNotFound))
	assert.True(t, errors.Is(store.Delete(ctx, "1001"), ErrNotFound))
}

func TestBorrowerStore_IDAfterDeletionUsesHighest(t *testing.T) {
	store := newTestBorrowerStore(t, FormatJSON)
	ctx := context.TODO()
	for _, doc := range []string{"1", "2", "3"} {
		_, err := store.Create(ctx, Borrower{Document: doc})
		require.NoError(t, err)
	}
	require.NoError(t, store.Delete(ctx, "2"))
	created, err := store.Create(ctx, Borrower{Document: "4"})
	require.NoError(t, err)
	assert.Equal(t, "4", created.ID)
}

func TestBookStore_CreateValidation(t *testing.T) {
	store := newTestBookStore(t, FormatJSON)
	ctx := context.TODO()

	_, err := store.Create(ctx, Book{Title: "Sin ISBN"})
	var missing missingFieldError
	assert.True(t, errors.As(err, &missing))

	_, err = store.Create(ctx, Book{ISBN: "978", Stock: -1})
	var invalid invalidFieldError
	assert.True(t, errors.As(err, &invalid))

	created, err := store.Create(ctx, Book{ISBN: "978", Title: "Rayuela", Author: "Cortázar", Stock: 2})
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)

	_, err = store.Create(ctx, Book{ISBN: "978", Title: "Otra"})
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Book{created}, all)
}

func TestBookStore_Update(t *testing.T) {
	store := newTestBookStore(t, FormatCSV)
	ctx := context.TODO()
	_, err := store.Create(ctx, Book{ISBN: "978", Title: "Rayuela", Stock: 2})
	require.NoError(t, err)

	stock := 5
	title := "Rayuela (2da ed.)"
	updated, err := store.Update(ctx, "978", BookUpdate{Title: &title, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, title, updated.Title)

	negative := -3
	_, err = store.Update(ctx, "978", BookUpdate{Stock: &negative})
	var invalid invalidFieldError
	assert.True(t, errors.As(err, &invalid))

	book, err := store.FindByISBN(ctx, "978")
	require.NoError(t, err)
	assert.Equal(t, 5, book.Stock)

	_, err = store.Update(ctx, "000", BookUpdate{Stock: &stock})
	assert.True(t, errors.Is(err, ErrBookNotFound))
}

func TestBookStore_Delete(t *testing.T) {
	store := newTestBookStore(t, FormatJSON)
	ctx := context.TODO()
	_, err := store.Create(ctx, Book{ISBN: "978"})
	require.NoError(t, err)
	_, err = store.Create(ctx, Book{ISBN: "979"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "978"))
	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "979", all[0].ISBN)

	assert.True(t, errors.Is(store.Delete(ctx, "978"), ErrBookNotFound))
}
