package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/unihome/unihome-api/internal/core/domain"
	"github.com/unihome/unihome-api/internal/core/ports"
)

// CredentialVerifier authenticates an email/password pair against an
// identity directory.
type CredentialVerifier struct {
	directory ports.IdentityDirectory
}

func NewCredentialVerifier(directory ports.IdentityDirectory) *CredentialVerifier {
	return &CredentialVerifier{directory: directory}
}

// Verify returns the matching identity without secret material. Emails are
// matched exactly as given; a blank email counts as missing.
// Unknown emails yield domain.ErrUserNotFound and wrong passwords
// domain.ErrInvalidCredentials; callers that face clients must not tell the
// two apart.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*domain.Identity, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	identity, err := v.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return identity.Public(), nil
}

// AuthService implements login and logout on top of the verifier and feeds
// the audit trail.
type AuthService struct {
	verifier *CredentialVerifier
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(directory ports.IdentityDirectory, audit ports.AuditSink, log zerolog.Logger) *AuthService {
	return &AuthService{
		verifier: NewCredentialVerifier(directory),
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, attempt ports.LoginAttempt) (*domain.Identity, error) {
	identity, err := s.verifier.Verify(ctx, attempt.Email, attempt.Password)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) {
			return nil, err
		}
		s.record(domain.AuthEvent{
			Type:      domain.AuthEventLoginFailed,
			Email:     attempt.Email,
			Reason:    failureReason(err),
			RemoteIP:  attempt.RemoteIP,
			RequestID: attempt.RequestID,
		})
		return nil, err
	}

	s.record(domain.AuthEvent{
		Type:       domain.AuthEventLoginSucceeded,
		Email:      identity.Email,
		IdentityID: identity.ID,
		RemoteIP:   attempt.RemoteIP,
		RequestID:  attempt.RequestID,
	})
	s.log.Info().Str("identity_id", identity.ID).Str("role", string(identity.Role)).Msg("login succeeded")
	return identity, nil
}

func (s *AuthService) Logout(_ context.Context, identity *domain.Identity, remoteIP, requestID string) {
	event := domain.AuthEvent{
		Type:      domain.AuthEventLogout,
		RemoteIP:  remoteIP,
		RequestID: requestID,
	}
	if identity != nil {
		event.Email = identity.Email
		event.IdentityID = identity.ID
	}
	s.record(event)
}

func (s *AuthService) record(event domain.AuthEvent) {
	if s.audit == nil {
		return
	}
	event.OccurredAt = s.now().UTC()
	s.audit.Enqueue(event)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_password"
	default:
		return "lookup_failed"
	}
}
