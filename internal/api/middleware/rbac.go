package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/unihome/unihome-api/internal/core/domain"
)

// RequireRole allows the request only when the session guard resolved an
// identity holding one of allowedRoles. Otherwise it returns
// domain.ErrForbidden for the central error handler to render.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRoleKey).(string)
			if _, ok := allowed[role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
