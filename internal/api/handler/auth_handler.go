package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unihome/unihome-api/internal/api/metrics"
	"github.com/unihome/unihome-api/internal/core/domain"
	"github.com/unihome/unihome-api/internal/core/ports"
)

const (
	msgInvalidPayload     = "invalid payload"
	msgInvalidCredentials = "invalid email or password"
	msgInternal           = "internal server error"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    ports.SessionStore
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions ports.SessionStore, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, log: log}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type loginResponse struct {
	Success bool             `json:"success"`
	User    *domain.Identity `json:"user"`
	Profile *domain.Profile  `json:"profile"`
	Role    domain.Role      `json:"role"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type currentUserResponse struct {
	User  *domain.Identity `json:"user"`
	Error string           `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login authenticates the credentials and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("missing_fields").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidPayload})
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("missing_fields").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	identity, err := h.authService.Login(ctx, ports.LoginAttempt{
		Email:     req.Email,
		Password:  req.Password,
		RemoteIP:  c.RealIP(),
		RequestID: requestID(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingCredentials):
			metrics.LoginsTotal.WithLabelValues("missing_fields").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgInvalidCredentials})
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Str("request_id", requestID(c)).Msg("login failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}

	if err := h.sessions.Create(ctx, c.Response(), c.Request(), identity); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Str("request_id", requestID(c)).Msg("create session failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}

	role := identity.Role
	if role == "" {
		role = domain.RoleStudent
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Success: true,
		User:    identity,
		Profile: identity.Profile(),
		Role:    role,
	})
}

// Logout ends the current session. Logging out without a session succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200   {object}  successResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	identity := ctxIdentity(c)
	if identity == nil {
		var err error
		if identity, err = h.sessions.Read(c.Request()); err != nil {
			h.log.Warn().Err(err).
				Str("request_id", requestID(c)).
				Msg("session read failed, logging out anonymously")
		}
	}

	if err := h.sessions.Destroy(c.Request().Context(), c.Response(), c.Request()); err != nil {
		h.log.Error().Err(err).Str("request_id", requestID(c)).Msg("destroy session failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}

	h.authService.Logout(c.Request().Context(), identity, c.RealIP(), requestID(c))
	metrics.LogoutsTotal.Inc()
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// CurrentUser returns the identity bound to the session, or null.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200   {object}  currentUserResponse
// @Failure      500   {object}  currentUserResponse
// @Router       /auth/user [get]
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	identity, err := h.sessions.Read(c.Request())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestID(c)).Msg("read session failed")
		return c.JSON(http.StatusInternalServerError, currentUserResponse{Error: msgInternal})
	}
	return c.JSON(http.StatusOK, currentUserResponse{User: identity})
}
