package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/user-service/internal/domain"
)

const userColumns = `id, firstname, lastname, email, bio, password_hash, reset_token_hash, reset_expires_at, created_at, updated_at`

type userRow struct {
	ID             string
	Firstname      string
	Lastname       string
	Email          string
	Bio            string
	PasswordHash   string
	ResetTokenHash sql.NullString
	ResetExpiresAt sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (userRow, error) {
	var ur userRow
	err := s.Scan(
		&ur.ID,
		&ur.Firstname,
		&ur.Lastname,
		&ur.Email,
		&ur.Bio,
		&ur.PasswordHash,
		&ur.ResetTokenHash,
		&ur.ResetExpiresAt,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

func (ur userRow) toDomain() domain.User {
	u := domain.User{
		ID:             ur.ID,
		Firstname:      ur.Firstname,
		Lastname:       ur.Lastname,
		Email:          ur.Email,
		Bio:            ur.Bio,
		PasswordHash:   ur.PasswordHash,
		ResetTokenHash: ur.ResetTokenHash.String,
		CreatedAt:      ur.CreatedAt.UTC(),
		UpdatedAt:      ur.UpdatedAt.UTC(),
	}
	if ur.ResetExpiresAt.Valid {
		t := ur.ResetExpiresAt.Time.UTC()
		u.ResetExpiresAt = &t
	}
	return u
}
