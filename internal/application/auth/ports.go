package auth

import (
	"context"
	"time"

	"github.com/baechuer/user-service/internal/domain"
)

/*
UserRepo
--------
Credential store port.
Only describes WHAT the service needs, not HOW it's stored.
Duplicate emails must surface as domain.ErrEmailAlreadyExists and missing
users as domain.ErrUserNotFound.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	UpdateByID(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error)
	DeleteByID(ctx context.Context, id string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenService
------------
Issues and verifies signed, time-limited tokens.
Used by the service (session + reset tokens) and the auth middleware.
*/
type TokenPurpose string

const (
	PurposeSession       TokenPurpose = "session"
	PurposePasswordReset TokenPurpose = "password_reset"
)

type TokenClaims struct {
	ID      string // jti; makes two tokens issued in the same second distinct
	UserID  string
	Email   string
	Purpose TokenPurpose
	Exp     time.Time
}

type TokenService interface {
	Issue(claims TokenClaims, ttl time.Duration) (string, error)
	Verify(token string) (TokenClaims, error)
	Fingerprint(token string) string
}

/*
Mailer
------
Email dispatcher. Implementations: SMTP, RabbitMQ (email-service consumes),
log-only for local development.
*/
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
