package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/api/middleware"
	"github.com/videotube/account-service/internal/core/domain"
)

// currentUser returns the account resolved by the Auth middleware. A missing
// value means the route was mounted without the gate.
func currentUser(c echo.Context) (*domain.PublicUser, error) {
	user, ok := c.Get(middleware.UserKey).(*domain.PublicUser)
	if !ok || user == nil {
		return nil, domain.Unauthorized("unauthorized request")
	}
	return user, nil
}
