package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookshelf/entity"
	"bookshelf/store"
)

// ListBooks godoc
// @Summary List books
// @Description Returns the first books in storage order, bounded
// @Tags books
// @Produce json
// @Success 200 {array} entity.Book
// @Failure 500 {object} map[string]string
// @Router /book [get]
func (h *Handler) ListBooks(c echo.Context) error {
	books, err := h.books.List(c.Request().Context(), h.bookListLimit)
	if err != nil {
		c.Logger().Errorf("Error while fetching books: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, books)
}

// GetBook godoc
// @Summary Get a book by title
// @Tags books
// @Produce json
// @Param title path string true "Book title"
// @Success 200 {object} entity.Book
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /book/{title} [get]
func (h *Handler) GetBook(c echo.Context) error {
	title := c.Param("title")

	book, err := h.books.FindByTitle(c.Request().Context(), title)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Book %s not found", title))
		}
		c.Logger().Errorf("Error while fetching book %s: %v", title, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, book)
}

// AddUserBook godoc
// @Summary Add a book for the token's user
// @Description Creates the book, then appends its id to the user's list.
// @Tags books
// @Accept json
// @Produce json
// @Param token path string true "Bearer token"
// @Param book body entity.BookInput true "Book to add"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string
// @Router /book/{token} [post]
func (h *Handler) AddUserBook(c echo.Context) error {
	username, err := h.verifyToken(c, c.Param("token"))
	if err != nil {
		return err
	}

	req := new(entity.BookInput)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	user, err := h.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		c.Logger().Errorf("Error while adding book: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	bookID, err := h.books.Insert(ctx, *req)
	if err != nil {
		c.Logger().Errorf("Error while adding book: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	// Create-then-link is not transactional: a concurrent add to the same
	// user can be lost to this full-list replace.
	if err := h.users.SetBooks(ctx, username, append(user.Books, bookID)); err != nil {
		c.Logger().Errorf("Error while adding book: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	c.Logger().Infof("Book with ID: %s added to user %s", bookID, username)
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Book with ID: %s added to user %s", bookID, username),
	})
}

// ListUserBooks godoc
// @Summary List the token's user's books
// @Description Resolves each stored book id; ids without a matching document
// @Description are skipped.
// @Tags books
// @Produce json
// @Param token path string true "Bearer token"
// @Success 200 {array} entity.Book
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string
// @Router /books/{token} [get]
func (h *Handler) ListUserBooks(c echo.Context) error {
	username, err := h.verifyToken(c, c.Param("token"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	user, err := h.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		c.Logger().Errorf("Error while fetching user books: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	books := []entity.Book{}
	for _, bookID := range user.Books {
		book, err := h.books.FindByID(ctx, bookID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Dangling reference, e.g. the book was deleted by
				// title. Skipped, not reported.
				continue
			}
			c.Logger().Errorf("Error while fetching user books: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
		}
		books = append(books, *book)
	}

	return c.JSON(http.StatusOK, books)
}

// UpdateBook godoc
// @Summary Update a book by title
// @Description Full replace of all mutable fields, not a partial merge
// @Tags books
// @Accept json
// @Produce json
// @Param title path string true "Book title"
// @Param book body entity.BookInput true "Replacement fields"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /book/{title} [put]
func (h *Handler) UpdateBook(c echo.Context) error {
	title := c.Param("title")

	req := new(entity.BookInput)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	err := h.books.ReplaceByTitle(c.Request().Context(), title, *req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		c.Logger().Errorf("Error while updating book %s: %v", title, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	c.Logger().Infof("Book with title: %s updated", title)
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Book with title: %s updated", title),
	})
}

// DeleteBook godoc
// @Summary Delete a book by title
// @Description Removes the first matching book. User book lists are not
// @Description touched; their ids go dangling.
// @Tags books
// @Produce json
// @Param title path string true "Book title"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /book/{title} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	title := c.Param("title")

	err := h.books.DeleteByTitle(c.Request().Context(), title)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		c.Logger().Errorf("Error while deleting book %s: %v", title, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	c.Logger().Infof("Book %s deleted successfully", title)
	return c.JSON(http.StatusOK, map[string]string{"message": "Book deleted successfully"})
}
