package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cryptic-app/accounts/api/http/presenter"
	"github.com/cryptic-app/accounts/pkg/auth"
	"github.com/cryptic-app/accounts/pkg/provision"
	"github.com/cryptic-app/accounts/pkg/security/session"
)

type AuthHandler struct {
	useCase auth.AuthUseCase
}

func NewAuthHandler(useCase auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{useCase: useCase}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Owner   string    `json:"owner"`
	Token   string    `json:"token"`
	Created time.Time `json:"created"`
	Expires time.Time `json:"expires"`
	Valid   bool      `json:"valid"`
}

// Info returns the attributes of the caller's session.
// @Summary Session info
// @Tags    auth
// @Produce json
// @Param   Token header string true "session token"
// @Success 200 {object} handlers.sessionResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /auth [get]
func (h *AuthHandler) Info(c *fiber.Ctx) error {
	sess, ok := session.FromContext(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "unauthenticated")
	}
	return presenter.JSON(c, http.StatusOK, sessionResponse{
		Owner:   sess.UserID.String(),
		Token:   sess.Token,
		Created: sess.CreatedAt,
		Expires: sess.ExpiresAt,
		Valid:   sess.Valid,
	})
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /auth [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "username and password are required")
	}

	sess, err := h.useCase.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidUsername):
			return presenter.Error(c, http.StatusBadRequest, "invalid username")
		case errors.Is(err, auth.ErrInvalidPassword):
			return presenter.Error(c, http.StatusBadRequest, "invalid password")
		default:
			return presenter.Error(c, http.StatusInternalServerError, "failed to login")
		}
	}

	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"token": sess.Token,
	})
}

// Register handles user registration and resource provisioning.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 200 {object} presenter.AckResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /auth [put]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "username, email and password are required")
	}

	if err := h.useCase.Register(c.Context(), req.Username, req.Email, req.Password); err != nil {
		var verr *auth.ValidationError
		var serr *provision.StageError
		switch {
		case errors.As(err, &verr):
			return presenter.Error(c, http.StatusBadRequest, verr.Message)
		case errors.Is(err, auth.ErrUsernameTaken):
			return presenter.Error(c, http.StatusBadRequest, "username already used")
		case errors.Is(err, auth.ErrEmailTaken):
			return presenter.Error(c, http.StatusBadRequest, "email address already used")
		case errors.As(err, &serr):
			return presenter.Error(c, http.StatusBadRequest, serr.Message)
		default:
			return presenter.Error(c, http.StatusInternalServerError, "failed to register user")
		}
	}

	return presenter.Ack(c)
}

// Logout deletes the caller's session.
// @Summary Logout
// @Tags    auth
// @Produce json
// @Param   Token header string true "session token"
// @Success 200 {object} presenter.AckResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /auth [delete]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, ok := session.FromContext(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "unauthenticated")
	}

	if err := h.useCase.Logout(c.Context(), sess.Token); err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return presenter.Error(c, http.StatusBadRequest, "unauthenticated")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to logout")
	}

	return presenter.Ack(c)
}
