package ports

import (
	"context"

	"github.com/unihome/unihome-api/internal/core/domain"
)

// IdentityDirectory looks up accounts by their unique email. Implementations
// return domain.ErrUserNotFound when no identity matches.
type IdentityDirectory interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
}
