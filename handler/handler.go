// Package handler holds the echo handlers for the user, book and owned-book
// routes. Handlers talk to the stores through their interfaces so tests can
// swap in the in-memory implementations.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"bookshelf/auth"
	"bookshelf/store"
)

// Handler bundles the injected collaborators every route needs.
type Handler struct {
	users         store.UserStore
	books         store.BookStore
	hasher        auth.Hasher
	tokens        *auth.TokenService
	bookListLimit int64
}

func New(users store.UserStore, books store.BookStore, hasher auth.Hasher, tokens *auth.TokenService, bookListLimit int64) *Handler {
	return &Handler{
		users:         users,
		books:         books,
		hasher:        hasher,
		tokens:        tokens,
		bookListLimit: bookListLimit,
	}
}

// Register attaches every route to g.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.POST("/register", h.RegisterUser)
	g.POST("/login", h.LoginUser)
	g.GET("/user/:token", h.GetUserByToken)

	g.GET("/book", h.ListBooks)
	g.GET("/book/:title", h.GetBook)
	g.POST("/book/:token", h.AddUserBook)
	g.PUT("/book/:title", h.UpdateBook)
	g.DELETE("/book/:title", h.DeleteBook)
	g.GET("/books/:token", h.ListUserBooks)
}

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

// HTTPErrorHandler renders every error as {"detail": message}. Anything that
// is not an *echo.HTTPError collapses to a plain 500 so internals never leak.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			detail = msg
		}
	}

	if err := c.JSON(code, map[string]string{"detail": detail}); err != nil {
		c.Logger().Errorf("Error writing error response: %v", err)
	}
}

// verifyToken resolves a path-segment token to its username claim, mapping
// token failures to 401 responses.
func (h *Handler) verifyToken(c echo.Context, token string) (string, error) {
	username, err := h.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			c.Logger().Errorf("Token has expired")
			return "", echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
		}
		c.Logger().Errorf("Token decode error")
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Token decode error")
	}
	return username, nil
}
