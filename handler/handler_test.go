package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bookshelf/auth"
	"bookshelf/entity"
	"bookshelf/store"
)

type testEnv struct {
	e      *echo.Echo
	users  *store.MemoryUserStore
	books  *store.MemoryBookStore
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := store.NewMemoryUserStore()
	books := store.NewMemoryBookStore()
	tokens := auth.NewTokenService([]byte("test-secret"), 0)
	h := New(users, books, auth.NewBcryptHasher(bcrypt.MinCost), tokens, 200)

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler
	h.Register(e.Group("/api/v1"))

	return &testEnv{e: e, users: users, books: books, tokens: tokens}
}

func (env *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) register(t *testing.T, username, email, password string) {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/v1/register", map[string]interface{}{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (env *testEnv) login(t *testing.T, username, email, password string) string {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/v1/login", map[string]interface{}{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "jdoe", "j@x.com", "p@ss1")

	rec := env.do(http.MethodPost, "/api/v1/register", map[string]interface{}{
		"username": "other",
		"email":    "j@x.com",
		"password": "different",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")

	// First registration unaffected
	env.login(t, "jdoe", "j@x.com", "p@ss1")
}

func TestRegisterInvalidShape(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/register", map[string]interface{}{
		"username": "jdoe",
		"email":    "not-an-email",
		"password": "p@ss1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/register", map[string]interface{}{
		"username": "jdoe",
		"email":    "j@x.com",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jdoe", "j@x.com", "p@ss1")

	token := env.login(t, "jdoe", "j@x.com", "p@ss1")
	username, err := env.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", username)

	rec := env.do(http.MethodPost, "/api/v1/login", map[string]interface{}{
		"username": "jdoe",
		"email":    "j@x.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect password")

	rec = env.do(http.MethodPost, "/api/v1/login", map[string]interface{}{
		"username": "ghost",
		"email":    "g@x.com",
		"password": "p@ss1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username does not exist")
}

func TestAddAndListUserBooks(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jdoe", "j@x.com", "p@ss1")
	token := env.login(t, "jdoe", "j@x.com", "p@ss1")

	rec := env.do(http.MethodPost, "/api/v1/book/"+token, map[string]interface{}{
		"title":  "Dune",
		"author": "Herbert",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "added to user jdoe")

	rec = env.do(http.MethodGet, "/api/v1/books/"+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var books []entity.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Herbert", books[0].Author)
}

func TestListUserBooksSkipsDanglingIDs(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jdoe", "j@x.com", "p@ss1")
	token := env.login(t, "jdoe", "j@x.com", "p@ss1")

	for _, title := range []string{"Dune", "Emma"} {
		rec := env.do(http.MethodPost, "/api/v1/book/"+token, map[string]interface{}{
			"title":  title,
			"author": "A",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(http.MethodDelete, "/api/v1/book/Dune", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The deleted book's id stays in the user's list but is silently
	// omitted on resolution.
	rec = env.do(http.MethodGet, "/api/v1/books/"+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var books []entity.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Emma", books[0].Title)

	user, err := env.users.FindByUsername(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.Len(t, user.Books, 2)
}

func TestGetBookByTitle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.books.Insert(context.Background(), entity.BookInput{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/api/v1/book/Dune", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Herbert")

	rec = env.do(http.MethodGet, "/api/v1/book/Missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Book Missing not found")
}

func TestListBooks(t *testing.T) {
	env := newTestEnv(t)

	for _, title := range []string{"A", "B", "C"} {
		_, err := env.books.Insert(context.Background(), entity.BookInput{Title: title, Author: "X"})
		require.NoError(t, err)
	}

	rec := env.do(http.MethodGet, "/api/v1/book", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var books []entity.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 3)
	assert.Equal(t, "A", books[0].Title)
}

func TestUpdateBookFullReplace(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.books.Insert(context.Background(), entity.BookInput{
		Title:           "Dune",
		Author:          "Herbert",
		PublicationDate: strptr("1965-08-01"),
		ISBN:            strptr("978-0441013593"),
	})
	require.NoError(t, err)

	rec := env.do(http.MethodPut, "/api/v1/book/Dune", map[string]interface{}{
		"title":  "Dune",
		"author": "F. Herbert",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Book with title: Dune updated")

	book, err := env.books.FindByTitle(context.Background(), "Dune")
	require.NoError(t, err)
	assert.Equal(t, "F. Herbert", book.Author)
	assert.Nil(t, book.PublicationDate)
	assert.Nil(t, book.ISBN)

	rec = env.do(http.MethodPut, "/api/v1/book/Missing", map[string]interface{}{
		"title":  "Missing",
		"author": "X",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Book not found")
}

func TestDeleteBook(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.books.Insert(context.Background(), entity.BookInput{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	rec := env.do(http.MethodDelete, "/api/v1/book/Dune", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Book deleted successfully")

	rec = env.do(http.MethodDelete, "/api/v1/book/Dune", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jdoe", "j@x.com", "p@ss1")

	rec := env.do(http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []entity.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "jdoe", views[0].Username)
	assert.Equal(t, 0, views[0].BookCount)
	assert.NotContains(t, rec.Body.String(), "hashed_password")
}

func TestGetUserByToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jdoe", "j@x.com", "p@ss1")
	token := env.login(t, "jdoe", "j@x.com", "p@ss1")

	rec := env.do(http.MethodGet, "/api/v1/user/"+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view entity.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "jdoe", view.Username)
	assert.Equal(t, "j@x.com", view.Email)
}

func TestTokenErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/user/garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token decode error")

	expired := auth.NewTokenService([]byte("test-secret"), -time.Hour)
	expiredToken, err := expired.Issue("jdoe")
	require.NoError(t, err)

	rec = env.do(http.MethodGet, "/api/v1/user/"+expiredToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has expired")

	// Valid token whose username has no user document is a 404, not a
	// token failure.
	ghostToken, err := env.tokens.Issue("ghost")
	require.NoError(t, err)

	rec = env.do(http.MethodGet, "/api/v1/user/"+ghostToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")

	rec = env.do(http.MethodGet, "/api/v1/books/"+ghostToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/book/"+ghostToken, map[string]interface{}{
		"title":  "Dune",
		"author": "Herbert",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorBodyShape(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/book/Missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "detail")
}

func TestRegisterLoginAddListScenario(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/register", map[string]interface{}{
		"username": "jdoe",
		"email":    "j@x.com",
		"password": "p@ss1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"jdoe"}`, rec.Body.String())

	token := env.login(t, "jdoe", "j@x.com", "p@ss1")

	rec = env.do(http.MethodPost, "/api/v1/book/"+token, map[string]interface{}{
		"title":  "Dune",
		"author": "Herbert",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/books/"+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var books []entity.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Herbert", books[0].Author)

	rec = env.do(http.MethodGet, "/api/v1/user/"+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view entity.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 1, view.BookCount)
}

func strptr(s string) *string { return &s }
