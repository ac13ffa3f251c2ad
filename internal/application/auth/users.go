package auth

import (
	"context"

	"github.com/baechuer/user-service/internal/domain"
)

// UpdateInput is a profile update. Nil fields are left untouched.
// Email is accepted only so its presence can be rejected.
type UpdateInput struct {
	Firstname *string
	Lastname  *string
	Bio       *string
	Email     *string
}

func (s *Service) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	if id == "" {
		return domain.User{}, domain.ErrInvalidID()
	}
	return s.users.GetByID(ctx, id)
}

// UpdateUser applies a profile update. Email is immutable: any attempt to
// send one is forbidden, even if it equals the current address.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateInput) (domain.User, error) {
	if in.Email != nil {
		return domain.User{}, domain.ErrEmailUpdateForbidden()
	}
	if id == "" {
		return domain.User{}, domain.ErrInvalidID()
	}

	upd := domain.UserUpdate{
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Bio:       in.Bio,
	}
	if upd.Empty() {
		return domain.User{}, domain.ErrEmptyBody()
	}

	return s.users.UpdateByID(ctx, id, upd)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidID()
	}
	return s.users.DeleteByID(ctx, id)
}
