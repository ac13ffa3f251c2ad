package dto

import (
	"github.com/baechuer/user-service/internal/application/auth"
)

// Field rules live in internal/validation; these structs only carry the
// already validated body into the service.

type RegisterRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Bio       string `json:"bio"`
}

func (r RegisterRequest) ToInput() auth.RegisterInput {
	return auth.RegisterInput{
		Firstname: r.Firstname,
		Lastname:  r.Lastname,
		Email:     r.Email,
		Password:  r.Password,
		Bio:       r.Bio,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest distinguishes absent fields (nil) from empty ones.
type UpdateUserRequest struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Bio       *string `json:"bio"`
	Email     *string `json:"email"`
}

func (r UpdateUserRequest) ToInput() auth.UpdateInput {
	return auth.UpdateInput{
		Firstname: r.Firstname,
		Lastname:  r.Lastname,
		Bio:       r.Bio,
		Email:     r.Email,
	}
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}
