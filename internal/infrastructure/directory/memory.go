// Package directory provides the in-process identity directory and the demo
// accounts used to seed any directory backend.
package directory

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/unihome/unihome-api/internal/core/domain"
)

// Account is an identity plus the plaintext password it is seeded with.
type Account struct {
	Identity domain.Identity
	Password string
}

// Memory is a fixed, read-only identity set keyed by email. It is safe for
// concurrent use because nothing mutates it after construction.
type Memory struct {
	byEmail map[string]domain.Identity
}

// NewMemory hashes every account password with bcrypt at the given cost and
// indexes the accounts by email. Duplicate emails and identities that break
// the role invariant are rejected.
func NewMemory(accounts []Account, cost int) (*Memory, error) {
	m := &Memory{byEmail: make(map[string]domain.Identity, len(accounts))}
	for _, acc := range accounts {
		identity, err := hashAccount(acc, cost)
		if err != nil {
			return nil, err
		}
		if _, dup := m.byEmail[identity.Email]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserExists, identity.Email)
		}
		m.byEmail[identity.Email] = *identity
	}
	return m, nil
}

// FindByEmail matches the email exactly.
func (m *Memory) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	identity, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &identity, nil
}

// Len returns the number of identities.
func (m *Memory) Len() int {
	return len(m.byEmail)
}

func hashAccount(acc Account, cost int) (*domain.Identity, error) {
	identity := acc.Identity
	identity.Email = strings.TrimSpace(identity.Email)
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if acc.Password == "" {
		return nil, fmt.Errorf("%w: %s has no password", domain.ErrInvalidIdentity, identity.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", identity.Email, err)
	}
	identity.PasswordHash = string(hash)
	return &identity, nil
}
