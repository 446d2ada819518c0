package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/unihome/unihome-api/internal/api/metrics"
	"github.com/unihome/unihome-api/internal/core/domain"
	"github.com/unihome/unihome-api/internal/core/ports"
)

const (
	ContextIdentityKey = "identity"
	ContextRoleKey     = "role"

	DefaultLoginPath = "/login"
	DefaultHomePath  = "/dashboard"
)

// SessionGuardConfig configures SessionGuard.
type SessionGuardConfig struct {
	Store ports.SessionStore
	Rules domain.RouteRules
	Log   zerolog.Logger

	// Skipper bypasses the guard entirely, including the session read.
	Skipper echomiddleware.Skipper
	// LoginPath receives unauthenticated requests for protected routes.
	LoginPath string
	// HomePath receives authenticated requests for auth-only routes.
	HomePath string
}

// SessionGuard resolves the session once per request and enforces the route
// rules before any handler runs:
//
//	protected route, no session   → 307 LoginPath?redirect=<path>
//	auth-only route, session      → 307 HomePath
//	anything else                 → next
//
// A store failure is logged and treated as no session. The guard never
// writes the session cookie.
func SessionGuard(cfg SessionGuardConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomiddleware.DefaultSkipper
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.HomePath == "" {
		cfg.HomePath = DefaultHomePath
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			req := c.Request()
			path := req.URL.Path

			identity, err := cfg.Store.Read(req)
			if err != nil {
				metrics.SessionReadErrorsTotal.Inc()
				cfg.Log.Warn().Err(err).
					Str("path", path).
					Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
					Msg("session read failed, treating request as unauthenticated")
				identity = nil
			}
			if identity != nil {
				c.Set(ContextIdentityKey, identity)
				c.Set(ContextRoleKey, string(identity.Role))
			}

			decision := cfg.Rules.Decide(path, identity != nil)
			metrics.SessionDecisionsTotal.WithLabelValues(string(decision)).Inc()

			switch decision {
			case domain.DecisionRedirectToLogin:
				q := url.Values{"redirect": []string{path}}
				return c.Redirect(http.StatusTemporaryRedirect, cfg.LoginPath+"?"+q.Encode())
			case domain.DecisionRedirectToHome:
				return c.Redirect(http.StatusTemporaryRedirect, cfg.HomePath)
			}
			return next(c)
		}
	}
}

// PathPrefixSkipper skips requests whose path starts with any of prefixes.
func PathPrefixSkipper(prefixes ...string) echomiddleware.Skipper {
	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
}
