package dto

import (
	"time"

	"github.com/baechuer/user-service/internal/domain"
)

// UserView is the public user payload. Credentials and reset state are never
// part of it.
type UserView struct {
	ID        string    `json:"id"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserViews(us []domain.User) []UserView {
	out := make([]UserView, 0, len(us))
	for _, u := range us {
		out = append(out, NewUserView(u))
	}
	return out
}

type LoginData struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"` // "Bearer"
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// PasswordResetData carries the raw reset token only when the service is
// configured to expose it (local development).
type PasswordResetData struct {
	Token string `json:"token,omitempty"`
}
