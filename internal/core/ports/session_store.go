package ports

import (
	"context"
	"net/http"

	"github.com/unihome/unihome-api/internal/core/domain"
)

// SessionStore owns the session attached to the client's cookie.
//
// Read returns (nil, nil) when there is no session, including when the
// cookie is present but cannot be decoded. A non-nil error means the backing
// collaborator failed and the caller decides how to degrade.
type SessionStore interface {
	Create(ctx context.Context, w http.ResponseWriter, r *http.Request, identity *domain.Identity) error
	Read(r *http.Request) (*domain.Identity, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}
