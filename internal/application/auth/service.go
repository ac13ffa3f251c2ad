package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/baechuer/user-service/internal/domain"
)

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	tokens TokenService
	mail   Mailer

	accessTTL        time.Duration
	passwordResetTTL time.Duration

	// URL the reset token is appended to, e.g. https://frontend/reset-password?token=
	passwordResetBaseURL string

	now     func() time.Time
	observe func(event, outcome string)

	dummyOnce sync.Once
	dummy     string
}

type Config struct {
	AccessTTL             time.Duration
	PasswordResetTokenTTL time.Duration
	PasswordResetBaseURL  string
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	tokens TokenService,
	mail Mailer,
	cfg Config,
) *Service {
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	resetTTL := cfg.PasswordResetTokenTTL
	if resetTTL <= 0 {
		resetTTL = domain.PasswordResetWindow
	}
	return &Service{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		mail:    mail,
		now:     time.Now,
		observe: func(string, string) {},

		accessTTL:            accessTTL,
		passwordResetTTL:     resetTTL,
		passwordResetBaseURL: cfg.PasswordResetBaseURL,
	}
}

// WithObserver registers a hook called once per workflow outcome
// (e.g. "login", "invalid_credentials"). Used for metrics.
func (s *Service) WithObserver(fn func(event, outcome string)) *Service {
	if fn != nil {
		s.observe = fn
	}
	return s
}

// WithClock overrides the wall clock used for reset expiry checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// AccessTTL is the lifetime of session tokens issued by Login.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// LoginResult is the output of a successful login.
type LoginResult struct {
	User      domain.User
	Token     string
	TokenType string // "Bearer"
	ExpiresIn int64  // seconds
}

// dummyHash returns a hash used to keep unknown-email logins as slow as
// wrong-password logins.
func (s *Service) dummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummy = h
		}
	})
	return s.dummy
}

// newOpaqueToken returns a random hex identifier.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
