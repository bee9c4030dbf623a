package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	List(ctx context.Context) ([]Book, error)
	FindByISBN(ctx context.Context, isbn string) (Book, error)
	Create(ctx context.Context, book Book) (Book, error)
	Update(ctx context.Context, isbn string, update BookUpdate) (Book, error)
	Delete(ctx context.Context, isbn string) error
	Save(ctx context.Context, books []Book) error
}

var _ BookStorage = (*BookStore)(nil) // ensure BookStore implements BookStorage.

// BookStore keeps books addressed by their ISBN.
type BookStore struct {
	logger *zap.Logger
	store  *Store[Book]
}

// NewBookStore provides a book store persisted at path.
func NewBookStore(logger *zap.Logger, path string, boltTimeout time.Duration) (*BookStore, error) {
	storage, err := NewRecordStorage(path, BookSchema, boltTimeout)
	if err != nil {
		return nil, err
	}
	return &BookStore{
		logger: logger,
		store:  NewStore(logger, storage, BookSchema, bookFromRow, bookToRow),
	}, nil
}

// List returns all books in file order.
func (bs *BookStore) List(ctx context.Context) ([]Book, error) {
	return bs.store.Load(ctx)
}

// Save overwrites the whole books collection.
func (bs *BookStore) Save(ctx context.Context, books []Book) error {
	return bs.store.Save(ctx, books)
}

// FindByISBN returns the book with isbn or ErrBookNotFound.
func (bs *BookStore) FindByISBN(ctx context.Context, isbn string) (Book, error) {
	books, err := bs.store.Load(ctx)
	if err != nil {
		return Book{}, err
	}
	if i := IndexBook(books, isbn); i >= 0 {
		return books[i], nil
	}
	return Book{}, ErrBookNotFound
}

// Create registers a new book with the next free identifier. The ISBN
// must not be registered yet and the stock cannot be negative.
func (bs *BookStore) Create(ctx context.Context, book Book) (Book, error) {
	book.ISBN = strings.TrimSpace(book.ISBN)
	if book.ISBN == "" {
		return Book{}, missingFieldError("ISBN")
	}
	if book.Stock < 0 {
		return Book{}, invalidFieldError("stock " + strconv.Itoa(book.Stock))
	}
	books, err := bs.store.Load(ctx)
	if err != nil {
		return Book{}, err
	}
	if IndexBook(books, book.ISBN) >= 0 {
		LoggerFromContext(ctx, bs.logger).Warn("store: book already registered", zap.String("book.isbn", book.ISBN))
		return Book{}, fmt.Errorf("%w: ISBN %q", ErrAlreadyExists, book.ISBN)
	}

	book = book.apply(BookUpdate{Title: &book.Title, Author: &book.Author})
	book.ID = strconv.Itoa(NextID(books))
	books = append(books, book)
	if err = bs.store.Save(ctx, books); err != nil {
		return Book{}, err
	}
	LoggerFromContext(ctx, bs.logger).Info("store: book created", zap.String("book.id", book.ID), zap.String("book.isbn", book.ISBN), zap.Int("book.stock", book.Stock))
	return book, nil
}

// Update applies the non nil fields of update to the book with isbn.
func (bs *BookStore) Update(ctx context.Context, isbn string, update BookUpdate) (Book, error) {
	if update.Stock != nil && *update.Stock < 0 {
		return Book{}, invalidFieldError("stock " + strconv.Itoa(*update.Stock))
	}
	books, err := bs.store.Load(ctx)
	if err != nil {
		return Book{}, err
	}
	i := IndexBook(books, isbn)
	if i < 0 {
		return Book{}, ErrBookNotFound
	}
	books[i] = books[i].apply(update)
	if err = bs.store.Save(ctx, books); err != nil {
		return Book{}, err
	}
	LoggerFromContext(ctx, bs.logger).Info("store: book updated", zap.String("book.isbn", books[i].ISBN))
	return books[i], nil
}

// Delete removes the book with isbn. Loans keep their reference.
func (bs *BookStore) Delete(ctx context.Context, isbn string) error {
	books, err := bs.store.Load(ctx)
	if err != nil {
		return err
	}
	i := IndexBook(books, isbn)
	if i < 0 {
		return ErrBookNotFound
	}
	books = append(books[:i], books[i+1:]...)
	if err = bs.store.Save(ctx, books); err != nil {
		return err
	}
	LoggerFromContext(ctx, bs.logger).Info("store: book deleted", zap.String("book.isbn", strings.TrimSpace(isbn)))
	return nil
}

// IndexBook returns the position of the book with isbn, or -1.
func IndexBook(books []Book, isbn string) int {
	isbn = strings.TrimSpace(isbn)
	for i, b := range books {
		if b.ISBN == isbn {
			return i
		}
	}
	return -1
}
