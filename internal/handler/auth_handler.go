package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sketchbin/internal/model"
	"sketchbin/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a signup request.
type SignupRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// LoginRequest represents a login request. The email field also accepts a
// user name.
type LoginRequest struct {
	Email string `json:"email" validate:"required"`
}

// VerifyRequest represents a code verification request.
type VerifyRequest struct {
	Code string `json:"code" validate:"required"`
}

// VerifyResponse carries the issued session token and the user's name.
type VerifyResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Signup godoc
// @Summary Sign up with name and email, receiving a one-time code by mail
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 200 {object} map[string]string
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 409 {object} apperr.ErrorResponse
// @Router /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// The HTTP surface only ever creates regular users; admins are seeded.
	if err := h.authService.Signup(c.Request().Context(), req.Name, req.Email, model.UserTypeUser); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "code sent")
}

// Login godoc
// @Summary Request a one-time sign-in code by email or user name
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Email or user name"
// @Success 200 {object} map[string]string
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.Login(c.Request().Context(), req.Email); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "code sent")
}

// Verify godoc
// @Summary Exchange a one-time code for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "One-time code"
// @Success 200 {object} VerifyResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Router /verify [post]
func (h *AuthHandler) Verify(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, name, err := h.authService.VerifyCode(c.Request().Context(), req.Code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, VerifyResponse{Token: token, Name: name})
}

// Logout godoc
// @Summary Revoke the session token
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), bearerToken(c)); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "logged out")
}

// Me godoc
// @Summary Resolve the session token to its user
// @Tags auth
// @Produce json
// @Success 200 {object} model.User
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.authService.GetUserForToken(c.Request().Context(), bearerToken(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
