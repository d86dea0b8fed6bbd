// Package store wraps the document collections behind small interfaces so
// handlers can run against MongoDB in production and the in-memory
// implementation in tests.
package store

import (
	"context"
	"errors"

	"bookshelf/entity"
)

// ErrNotFound is returned when no document matches a lookup.
var ErrNotFound = errors.New("document not found")

// UserStore is the users collection.
type UserStore interface {
	// FindByUsername returns the first user with that username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByEmail returns the first user with that email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Insert stores a new user and returns its hex id.
	Insert(ctx context.Context, user *entity.User) (string, error)

	// All returns every user. Full scan, no pagination.
	All(ctx context.Context) ([]entity.User, error)

	// SetBooks replaces the user's whole book-id list. Not an atomic
	// append: concurrent writers lose updates, last writer wins.
	SetBooks(ctx context.Context, username string, books []string) error
}

// BookStore is the books collection.
type BookStore interface {
	// List returns up to limit books in natural storage order.
	List(ctx context.Context, limit int64) ([]entity.Book, error)

	// FindByTitle returns the first book with that title. Titles are not
	// unique; under duplicates the result is whichever the store yields
	// first.
	FindByTitle(ctx context.Context, title string) (*entity.Book, error)

	// FindByID returns the book with the given hex id.
	FindByID(ctx context.Context, id string) (*entity.Book, error)

	// Insert stores a new book and returns its hex id.
	Insert(ctx context.Context, in entity.BookInput) (string, error)

	// ReplaceByTitle overwrites every mutable field of the first book
	// matching title. Omitted optional fields become null, they are not
	// preserved.
	ReplaceByTitle(ctx context.Context, title string, in entity.BookInput) error

	// DeleteByTitle removes the first book matching title. User book
	// lists referencing it are left alone.
	DeleteByTitle(ctx context.Context, title string) error
}
