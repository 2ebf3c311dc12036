package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

// UserKey is the echo context key holding the authenticated *domain.PublicUser.
const UserKey = "user"

const accessCookie = "accessToken"

// UserResolver loads the account an access token points at.
type UserResolver interface {
	CurrentUser(ctx context.Context, userID string) (*domain.PublicUser, error)
}

// Auth verifies the access token, taken from the accessToken cookie or the
// Authorization bearer header, and stores the resolved account under UserKey.
func Auth(tokens ports.TokenIssuer, users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := accessToken(c)
			if raw == "" {
				return domain.Unauthorized("unauthorized request")
			}

			identity, err := tokens.VerifyAccess(raw)
			if err != nil {
				return domain.Unauthorized("invalid access token")
			}

			user, err := users.CurrentUser(c.Request().Context(), identity.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.Unauthorized("invalid access token")
				}
				return err
			}
			if user == nil {
				return domain.Unauthorized("invalid access token")
			}

			c.Set(UserKey, user)
			return next(c)
		}
	}
}

// accessToken prefers the cookie over the header.
func accessToken(c echo.Context) string {
	if ck, err := c.Cookie(accessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
