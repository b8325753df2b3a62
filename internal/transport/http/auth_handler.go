package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/njprem/Todo_APP_BackEnd/internal/service"
	"github.com/njprem/Todo_APP_BackEnd/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	h := &AuthHandler{auth: auth}

	g := e.Group("/api/v1/auth")
	g.POST("/signup", h.signup)
	g.POST("/token", h.login)
	g.POST("/forgot-password", h.forgotPassword)
	g.POST("/reset-password", h.resetPassword)
	g.POST("/reset-password/:token", h.resetPassword)

	protected := g.Group("", RequireAuth(auth))
	protected.GET("/me", h.me)
	protected.POST("/change-password", h.changePassword)
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	user, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, AuthUserResponse{User: toAuthUser(user)})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return unauthorized(c, "incorrect username or password")
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, AuthTokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   result.ExpiresAt.UTC().Format(time.RFC3339),
		User:        toAuthUser(result.User),
	})
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c, "authentication required")
	}
	return c.JSON(http.StatusOK, AuthUserResponse{User: toAuthUser(user)})
}

func (h *AuthHandler) changePassword(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c, "authentication required")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.ChangePassword(c.Request().Context(), user, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, util.Error("old password is incorrect"))
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Message("Password updated successfully"))
}

func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	identifier := strings.TrimSpace(req.Email)
	if identifier == "" {
		identifier = strings.TrimSpace(c.QueryParam("email"))
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), identifier); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Message("If the account exists, a password reset email has been sent"))
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		token = req.ResetToken
	}

	if _, err := h.auth.ResetPassword(c.Request().Context(), token, req.NewPassword); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Message("Password has been reset"))
}

// writeServiceError maps service errors onto stable status codes. Messages
// come from a fixed set so internal details never reach the client.
func writeServiceError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, util.ValidationError(verr.Fields))
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, util.Error("validation failed"))
	case errors.Is(err, service.ErrInvalidCredentials):
		return unauthorized(c, "incorrect username or password")
	case errors.Is(err, service.ErrUnauthorized):
		return unauthorized(c, "could not validate credentials")
	case errors.Is(err, service.ErrUserNotFound):
		return unauthorized(c, "user not found")
	case errors.Is(err, service.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, util.Error("username already registered"))
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, util.Error("email already registered"))
	case errors.Is(err, service.ErrInvalidOrExpiredResetToken):
		return c.JSON(http.StatusBadRequest, util.Error("invalid or expired reset token"))
	case errors.Is(err, service.ErrDeliveryFailure):
		return c.JSON(http.StatusBadGateway, util.Error("could not send password reset email"))
	case errors.Is(err, service.ErrTodoNotFound):
		return c.JSON(http.StatusNotFound, util.Error("todo not found"))
	case errors.Is(err, service.ErrInvalidAttachment):
		return c.JSON(http.StatusBadRequest, util.Error("attachment must be a JPEG, PNG, GIF or WebP image within the size limit"))
	case errors.Is(err, service.ErrAttachmentsDisabled):
		return c.JSON(http.StatusServiceUnavailable, util.Error("attachments are not available"))
	default:
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Str("path", c.Path()).Msg("unhandled service error")
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
}
