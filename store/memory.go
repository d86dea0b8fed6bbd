package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookshelf/entity"
)

// MemoryUserStore is an in-memory UserStore for tests and local development.
// Documents are kept in insertion order to mirror a collection's natural
// order.
type MemoryUserStore struct {
	mu    sync.Mutex
	users []entity.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{}
}

func (s *MemoryUserStore) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Username == username {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) Insert(_ context.Context, user *entity.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Books == nil {
		user.Books = []string{}
	}
	s.users = append(s.users, *user)
	return user.ID.Hex(), nil
}

func (s *MemoryUserStore) All(_ context.Context) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemoryUserStore) SetBooks(_ context.Context, username string, books []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Username == username {
			s.users[i].Books = append([]string(nil), books...)
			return nil
		}
	}
	return ErrNotFound
}

// MemoryBookStore is the in-memory BookStore counterpart.
type MemoryBookStore struct {
	mu    sync.Mutex
	books []entity.Book
}

func NewMemoryBookStore() *MemoryBookStore {
	return &MemoryBookStore{}
}

func (s *MemoryBookStore) List(_ context.Context, limit int64) ([]entity.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.books)
	if limit > 0 && int64(n) > limit {
		n = int(limit)
	}
	out := make([]entity.Book, n)
	copy(out, s.books[:n])
	return out, nil
}

func (s *MemoryBookStore) FindByTitle(_ context.Context, title string) (*entity.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].Title == title {
			book := s.books[i]
			return &book, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryBookStore) FindByID(_ context.Context, id string) (*entity.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].ID.Hex() == id {
			book := s.books[i]
			return &book, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryBookStore) Insert(_ context.Context, in entity.BookInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book := entity.Book{
		ID:              primitive.NewObjectID(),
		Title:           in.Title,
		Author:          in.Author,
		PublicationDate: in.PublicationDate,
		ISBN:            in.ISBN,
		CoverImage:      in.CoverImage,
	}
	s.books = append(s.books, book)
	return book.ID.Hex(), nil
}

func (s *MemoryBookStore) ReplaceByTitle(_ context.Context, title string, in entity.BookInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].Title == title {
			s.books[i] = entity.Book{
				ID:              s.books[i].ID,
				Title:           in.Title,
				Author:          in.Author,
				PublicationDate: in.PublicationDate,
				ISBN:            in.ISBN,
				CoverImage:      in.CoverImage,
			}
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryBookStore) DeleteByTitle(_ context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].Title == title {
			s.books = append(s.books[:i], s.books[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
