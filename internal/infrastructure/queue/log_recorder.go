package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/unihome/unihome-api/internal/core/domain"
)

// LogRecorder writes auth events to the structured log. It backs the audit
// trail when no database is configured.
type LogRecorder struct {
	log zerolog.Logger
}

func NewLogRecorder(log zerolog.Logger) *LogRecorder {
	return &LogRecorder{log: log}
}

func (r *LogRecorder) Record(_ context.Context, event *domain.AuthEvent) error {
	entry := r.log.Info()
	if event.Type == domain.AuthEventLoginFailed {
		entry = r.log.Warn()
	}
	entry.
		Str("event", string(event.Type)).
		Str("email", event.Email).
		Str("identity_id", event.IdentityID).
		Str("reason", event.Reason).
		Str("remote_ip", event.RemoteIP).
		Str("request_id", event.RequestID).
		Time("occurred_at", event.OccurredAt).
		Msg("auth event")
	return nil
}
