package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestIdentity_PublicStripsSecret(t *testing.T) {
	in := Identity{ID: "1", Email: "a@b.com", Role: RoleStudent, PasswordHash: "$2a$hash"}

	out := in.Public()
	if out.PasswordHash != "" {
		t.Fatalf("expected password hash to be cleared")
	}
	if in.PasswordHash == "" {
		t.Fatalf("Public must not mutate the receiver")
	}
}

func TestIdentity_JSONNeverCarriesSecret(t *testing.T) {
	in := Identity{ID: "1", Email: "a@b.com", Role: RoleLandlord, OrganizationName: "Homes", PasswordHash: "$2a$hash"}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "hash") || strings.Contains(string(raw), "password") {
		t.Fatalf("secret leaked into JSON: %s", raw)
	}
}

func TestIdentity_Validate(t *testing.T) {
	cases := []struct {
		name    string
		in      Identity
		wantErr bool
	}{
		{"student with university", Identity{Email: "s@u.com", Role: RoleStudent, UniversityID: "u1"}, false},
		{"student without university", Identity{Email: "s@u.com", Role: RoleStudent}, false},
		{"student with organization", Identity{Email: "s@u.com", Role: RoleStudent, OrganizationName: "Acme"}, true},
		{"landlord with organization", Identity{Email: "l@h.com", Role: RoleLandlord, OrganizationName: "Acme"}, false},
		{"landlord with university", Identity{Email: "l@h.com", Role: RoleLandlord, UniversityName: "State"}, true},
		{"admin plain", Identity{Email: "a@x.com", Role: RoleAdmin}, false},
		{"admin with organization", Identity{Email: "a@x.com", Role: RoleAdmin, OrganizationName: "Acme"}, true},
		{"unknown role", Identity{Email: "x@x.com", Role: "tenant"}, true},
		{"missing email", Identity{Role: RoleAdmin}, true},
	}
	for _, tc := range cases {
		err := tc.in.Validate()
		if tc.wantErr != (err != nil) {
			t.Fatalf("%s: wantErr=%v, got %v", tc.name, tc.wantErr, err)
		}
		if err != nil && !errors.Is(err, ErrInvalidIdentity) {
			t.Fatalf("%s: expected ErrInvalidIdentity, got %v", tc.name, err)
		}
	}
}
