package domain

import (
	"errors"
	"fmt"
)

// Role is the single role an identity holds.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrForbidden          = errors.New("access forbidden")
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

// Identity is an account known to the directory. Email is the unique key.
// PasswordHash never leaves the process: it is excluded from JSON and
// cleared by Public.
type Identity struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Role             Role   `json:"role"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	UniversityID     string `json:"university_id,omitempty"`
	UniversityName   string `json:"university_name,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	PasswordHash     string `json:"-"`
}

// Public returns a copy of the identity with secret material removed.
func (i Identity) Public() *Identity {
	i.PasswordHash = ""
	return &i
}

// Validate checks that the optional fields populated match the role:
// students carry university fields, landlords an organization name.
func (i *Identity) Validate() error {
	if i.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidIdentity)
	}
	if !i.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidIdentity, i.Role)
	}

	hasUniversity := i.UniversityID != "" || i.UniversityName != ""
	hasOrganization := i.OrganizationName != ""

	switch i.Role {
	case RoleStudent:
		if hasOrganization {
			return fmt.Errorf("%w: student %s cannot carry an organization", ErrInvalidIdentity, i.Email)
		}
	case RoleLandlord:
		if hasUniversity {
			return fmt.Errorf("%w: landlord %s cannot carry a university", ErrInvalidIdentity, i.Email)
		}
	case RoleAdmin:
		if hasUniversity || hasOrganization {
			return fmt.Errorf("%w: admin %s cannot carry university or organization", ErrInvalidIdentity, i.Email)
		}
	}
	return nil
}

// Profile is the display subset of an identity returned on login.
type Profile struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Role             Role   `json:"role"`
	UniversityID     string `json:"university_id,omitempty"`
	UniversityName   string `json:"university_name,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
}

// Profile projects the identity onto its display fields.
func (i *Identity) Profile() *Profile {
	return &Profile{
		FirstName:        i.FirstName,
		LastName:         i.LastName,
		Role:             i.Role,
		UniversityID:     i.UniversityID,
		UniversityName:   i.UniversityName,
		OrganizationName: i.OrganizationName,
	}
}
