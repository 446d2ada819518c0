package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/unihome/unihome-api/internal/core/domain"
)

// DemoAccounts returns one account per role.
func DemoAccounts() []Account {
	return []Account{
		{
			Identity: domain.Identity{
				ID:             "8b1f6c2e-3d4a-4e5f-9a6b-7c8d9e0f1a2b",
				Email:          "student@uni.com",
				Role:           domain.RoleStudent,
				FirstName:      "Alex",
				LastName:       "Rivera",
				UniversityID:   "uni-001",
				UniversityName: "Metropolitan State University",
			},
			Password: "123456789",
		},
		{
			Identity: domain.Identity{
				ID:               "2c3d4e5f-6a7b-4c8d-9e0f-1a2b3c4d5e6f",
				Email:            "landlord@homes.com",
				Role:             domain.RoleLandlord,
				FirstName:        "Morgan",
				LastName:         "Lee",
				OrganizationName: "Campus Homes LLC",
			},
			Password: "123456789",
		},
		{
			Identity: domain.Identity{
				ID:        "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a",
				Email:     "admin@unihome.com",
				Role:      domain.RoleAdmin,
				FirstName: "Jordan",
				LastName:  "Kim",
			},
			Password: "123456789",
		},
	}
}

// Seeder is a writable directory that can be seeded.
type Seeder interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}

// Seed inserts the accounts into an empty directory. A directory that already
// holds identities is left untouched.
func Seed(ctx context.Context, dst Seeder, accounts []Account, cost int, log zerolog.Logger) (int, error) {
	n, err := dst.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed directory: %w", err)
	}
	if n > 0 {
		log.Debug().Int64("identities", n).Msg("directory already populated, skipping seed")
		return 0, nil
	}

	created := 0
	for _, acc := range accounts {
		identity, err := hashAccount(acc, cost)
		if err != nil {
			return created, err
		}
		if _, err := dst.Create(ctx, identity); err != nil {
			if errors.Is(err, domain.ErrUserExists) {
				continue
			}
			return created, fmt.Errorf("seed %s: %w", identity.Email, err)
		}
		created++
	}

	log.Info().Int("identities", created).Msg("directory seeded")
	return created, nil
}
