package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/unihome/unihome-api/docs"
	"github.com/unihome/unihome-api/internal/api/handler"
	"github.com/unihome/unihome-api/internal/api/middleware"
	"github.com/unihome/unihome-api/internal/core/domain"
	"github.com/unihome/unihome-api/internal/core/ports"
)

// Dependencies are the services the router wires into handlers. They are
// constructed by the caller and shared by reference.
type Dependencies struct {
	Auth      ports.AuthService
	Sessions  ports.SessionStore
	Rules     domain.RouteRules
	Readiness map[string]handler.Pinger
	Log       zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// infraPrefixes never go through the session guard.
var infraPrefixes = []string{"/health", "/metrics", "/swagger"}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "unihome",
		Registerer: deps.Registerer,
		Skipper:    middleware.PathPrefixSkipper("/metrics"),
	}))
	e.Use(middleware.SessionGuard(middleware.SessionGuardConfig{
		Store:   deps.Sessions,
		Rules:   deps.Rules,
		Log:     deps.Log,
		Skipper: middleware.PathPrefixSkipper(infraPrefixes...),
	}))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, deps.Log)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/user", authHandler.CurrentUser)

	// --- Pages (guarded by SessionGuard) ---
	pages := handler.NewPageHandler()
	e.GET("/login", pages.Login)
	e.GET("/dashboard", pages.Page("dashboard"))
	e.GET("/profile", pages.Page("profile"))
	e.GET("/social", pages.Page("social"))
	e.GET("/landlord/dashboard", pages.Page("landlord_dashboard"),
		middleware.RequireRole(domain.RoleLandlord, domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			entry := log.Info()
			if v.Error != nil || v.Status >= 500 {
				entry = log.Error().Err(v.Error)
			}
			entry.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
