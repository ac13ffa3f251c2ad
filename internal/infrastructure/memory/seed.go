package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/user-service/internal/domain"
)

// Hasher is the minimal surface we need for seeding.
type Hasher interface {
	Hash(password string) (string, error)
}

// Creator is the store surface seeding writes through.
type Creator interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

type SeedUser struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
	Bio       string
}

// DevSeedUsers are created when dev seeding is enabled.
var DevSeedUsers = []SeedUser{
	{Firstname: "Ada", Lastname: "Lovelace", Email: "ada@example.com", Password: "AdaPassword123!", Bio: "analytical engines"},
	{Firstname: "Alan", Lastname: "Turing", Email: "alan@example.com", Password: "AlanPassword123!", Bio: "computability"},
}

// SeedUsers creates initial users for local development.
// Safe to call multiple times (duplicates ignored). Returns how many were created.
func SeedUsers(ctx context.Context, users Creator, hasher Hasher, seeds []SeedUser, lg zerolog.Logger) int {
	lg = lg.With().Str("component", "seed").Logger()

	created := 0
	for _, s := range seeds {
		hash, err := hasher.Hash(s.Password)
		if err != nil {
			lg.Warn().Err(err).Str("email", s.Email).Msg("hash failed")
			continue
		}

		_, err = users.Create(ctx, domain.User{
			Firstname:    s.Firstname,
			Lastname:     s.Lastname,
			Email:        s.Email,
			Bio:          s.Bio,
			PasswordHash: hash,
		})
		if err != nil {
			if !domain.Is(err, "email_already_exists") {
				lg.Warn().Err(err).Str("email", s.Email).Msg("create failed")
			}
			continue
		}
		created++
	}

	lg.Info().Int("created", created).Msg("dev users seeded")
	return created
}
