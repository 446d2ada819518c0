package ports

import (
	"context"

	"github.com/unihome/unihome-api/internal/core/domain"
)

// AuditRecorder persists auth events.
type AuditRecorder interface {
	Record(ctx context.Context, event *domain.AuthEvent) error
}

// AuditSink accepts auth events without blocking the caller.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}
