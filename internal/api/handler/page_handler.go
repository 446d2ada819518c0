package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unihome/unihome-api/internal/core/domain"
)

// PageHandler answers the page routes that sit behind the session guard.
// The frontend renders them; the API only confirms access and hands back the
// resolved identity.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

type pageResponse struct {
	Page     string           `json:"page"`
	User     *domain.Identity `json:"user"`
	Redirect string           `json:"redirect,omitempty"`
}

// Page returns a handler describing the named page.
func (h *PageHandler) Page(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, pageResponse{Page: name, User: ctxIdentity(c)})
	}
}

// Login describes the login page, echoing where the client should return
// after authenticating.
func (h *PageHandler) Login(c echo.Context) error {
	return c.JSON(http.StatusOK, pageResponse{
		Page:     "login",
		Redirect: c.QueryParam("redirect"),
	})
}
