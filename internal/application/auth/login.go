package auth

import (
	"context"
	"strings"

	"github.com/baechuer/user-service/internal/domain"
)

// Login authenticates a user and issues a session token.
// IMPORTANT: must not leak whether the email exists (avoid user enumeration).
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		s.observe("login", "invalid_credentials")
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !domain.Is(err, "user_not_found") {
			return LoginResult{}, err
		}
		// Burn a comparison so unknown emails cost the same as bad passwords.
		_ = s.hasher.Compare(s.dummyHash(), password)
		s.observe("login", "invalid_credentials")
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.observe("login", "invalid_credentials")
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	tok, err := s.tokens.Issue(TokenClaims{
		UserID:  u.ID,
		Email:   u.Email,
		Purpose: PurposeSession,
	}, s.accessTTL)
	if err != nil {
		return LoginResult{}, domain.ErrTokenSignFailed(err)
	}

	s.observe("login", "success")
	return LoginResult{
		User:      u,
		Token:     tok,
		TokenType: "Bearer",
		ExpiresIn: int64(s.accessTTL.Seconds()),
	}, nil
}
