package auth

import (
	"context"
	"strings"

	"github.com/baechuer/user-service/internal/domain"
)

type RegisterInput struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
	Bio       string
}

// Register creates a user. The plaintext password never reaches the store.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return domain.User{}, domain.ErrInvalidField("email/password", "empty")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, domain.ErrHashFailed(err)
	}

	created, err := s.users.Create(ctx, domain.User{
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Email:        in.Email,
		Bio:          in.Bio,
		PasswordHash: hash,
	})
	if err != nil {
		if domain.Is(err, "email_already_exists") {
			s.observe("register", "email_exists")
		}
		return domain.User{}, err
	}

	s.observe("register", "success")
	return created, nil
}
