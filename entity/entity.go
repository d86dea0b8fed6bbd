package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the stored document in the users collection. Books holds the hex
// ids of owned books; the referenced documents are not embedded and may no
// longer exist.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Books          []string           `bson:"books" json:"books"`
}

// UserView is the API-safe projection of a User.
type UserView struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Books     []string `json:"books"`
	BookCount int      `json:"book_count"`
}

// View projects a stored user into its response shape.
func (u User) View() UserView {
	books := u.Books
	if books == nil {
		books = []string{}
	}
	return UserView{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		Books:     books,
		BookCount: len(books),
	}
}

// Book is the stored document in the books collection. The optional fields
// are pointers so a replace can reset them to null instead of keeping stale
// values around.
type Book struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Author          string             `bson:"author" json:"author"`
	PublicationDate *string            `bson:"publication_date" json:"publication_date"`
	ISBN            *string            `bson:"isbn" json:"isbn"`
	CoverImage      *string            `bson:"cover_image" json:"cover_image"`
}

// BookInput is the request body for creating or replacing a book.
type BookInput struct {
	Title           string  `json:"title" validate:"required"`
	Author          string  `json:"author" validate:"required"`
	PublicationDate *string `json:"publication_date"`
	ISBN            *string `json:"isbn"`
	CoverImage      *string `json:"cover_image"`
}

// UserInput is the registration request body. Books may seed the new user's
// owned-book id list.
type UserInput struct {
	Username string   `json:"username" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required"`
	Books    []string `json:"books"`
}

// LoginInput mirrors the registration shape. Email is part of the wire
// contract but only username and password are checked.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
