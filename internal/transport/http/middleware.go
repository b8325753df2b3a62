package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
	"github.com/njprem/Todo_APP_BackEnd/internal/service"
	"github.com/njprem/Todo_APP_BackEnd/internal/util"
)

const contextUserKey = "auth.user"

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

func RequireAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.TrimSpace(authHeader) == "" {
				return unauthorized(c, "missing authorization header")
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthorized(c, "invalid authorization header")
			}
			token := strings.TrimSpace(parts[1])

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrUnauthorized):
					return unauthorized(c, "could not validate credentials")
				case errors.Is(err, service.ErrMalformedClaim):
					return unauthorized(c, "token is missing required claims")
				case errors.Is(err, service.ErrUserNotFound):
					return unauthorized(c, "user not found")
				default:
					zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("authenticate request")
					return c.JSON(http.StatusInternalServerError, util.Error("could not authenticate request"))
				}
			}
			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, message string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, util.Error(message))
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok && user != nil
}
