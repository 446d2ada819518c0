package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/unihome/unihome-api/internal/api/middleware"
	"github.com/unihome/unihome-api/internal/core/domain"
)

// ctxIdentity returns the identity the session guard resolved for this
// request, or nil when the request is unauthenticated.
func ctxIdentity(c echo.Context) *domain.Identity {
	identity, _ := c.Get(middleware.ContextIdentityKey).(*domain.Identity)
	return identity
}

// requestID returns the id assigned by echo's RequestID middleware.
func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
