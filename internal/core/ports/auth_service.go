package ports

import (
	"context"

	"github.com/unihome/unihome-api/internal/core/domain"
)

// LoginAttempt carries the request metadata recorded alongside a login.
type LoginAttempt struct {
	Email     string
	Password  string
	RemoteIP  string
	RequestID string
}

type AuthService interface {
	// Login verifies the credentials and returns the identity without its
	// secret material.
	Login(ctx context.Context, attempt LoginAttempt) (*domain.Identity, error)
	// Logout records that the identity (possibly nil) ended its session.
	Logout(ctx context.Context, identity *domain.Identity, remoteIP, requestID string)
}
