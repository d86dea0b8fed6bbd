package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookshelf/entity"
	"bookshelf/store"
)

// ListUsers godoc
// @Summary List all users
// @Description Returns every registered user in API-safe projection
// @Tags users
// @Produce json
// @Success 200 {array} entity.UserView
// @Failure 500 {object} map[string]string
// @Router /users [get]
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.users.All(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("An error occurred while fetching users: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	views := make([]entity.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, user.View())
	}
	return c.JSON(http.StatusOK, views)
}

// RegisterUser godoc
// @Summary User registration
// @Description Registers a new account with a unique email
// @Tags users
// @Accept json
// @Produce json
// @Param user body entity.UserInput true "Registration request"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Email already registered"
// @Failure 500 {object} map[string]string
// @Router /register [post]
func (h *Handler) RegisterUser(c echo.Context) error {
	req := new(entity.UserInput)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	// Pre-check, not atomic: two racing registrations can both pass.
	_, err := h.users.FindByEmail(ctx, req.Email)
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
	}
	if !errors.Is(err, store.ErrNotFound) {
		c.Logger().Errorf("An error occurred while registering user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		c.Logger().Errorf("An error occurred while registering user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	books := req.Books
	if books == nil {
		books = []string{}
	}
	user := entity.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		Books:          books,
	}
	if _, err := h.users.Insert(ctx, &user); err != nil {
		c.Logger().Errorf("An error occurred while registering user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	c.Logger().Infof("User registered successfully: %s", req.Username)
	return c.JSON(http.StatusOK, map[string]string{"username": req.Username})
}

// LoginUser godoc
// @Summary User login
// @Description Verifies credentials and issues a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body entity.LoginInput true "Login request"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Bad credentials"
// @Failure 500 {object} map[string]string
// @Router /login [post]
func (h *Handler) LoginUser(c echo.Context) error {
	req := new(entity.LoginInput)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.users.FindByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Username does not exist")
		}
		c.Logger().Errorf("An error occurred while logging in user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	if !h.hasher.Check(req.Password, user.HashedPassword) {
		return echo.NewHTTPError(http.StatusBadRequest, "Incorrect password")
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		c.Logger().Errorf("An error occurred while logging in user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	c.Logger().Infof("User logged in successfully: %s", user.Username)
	return c.JSON(http.StatusOK, map[string]string{
		"username": user.Username,
		"token":    token,
	})
}

// GetUserByToken godoc
// @Summary Get user by token
// @Description Resolves a bearer token to the owning user
// @Tags users
// @Produce json
// @Param token path string true "Bearer token"
// @Success 200 {object} entity.UserView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string
// @Router /user/{token} [get]
func (h *Handler) GetUserByToken(c echo.Context) error {
	username, err := h.verifyToken(c, c.Param("token"))
	if err != nil {
		return err
	}

	user, err := h.users.FindByUsername(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		c.Logger().Errorf("An error occurred while fetching user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(http.StatusOK, user.View())
}
