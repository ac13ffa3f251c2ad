package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/baechuer/user-service/internal/domain"
)

// ChangePassword changes the password of userID.
// Existing session tokens stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (domain.User, error) {
	if oldPassword == newPassword {
		return domain.User{}, domain.ErrSamePassword()
	}
	if userID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, oldPassword); err != nil {
		return domain.User{}, domain.ErrWrongPassword()
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.User{}, domain.ErrHashFailed(err)
	}

	return s.users.UpdateByID(ctx, userID, domain.UserUpdate{PasswordHash: &newHash})
}

// RequestPasswordReset issues a reset token for email, stores its
// fingerprint and mails the reset link. It returns the raw token.
//
// An unknown email is not an error: ("", nil) is returned and the caller
// decides whether to reveal that. Issuing supersedes any earlier token.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			s.observe("password_reset_request", "unknown_email")
			return "", nil
		}
		return "", err
	}

	jti, err := newOpaqueToken(16)
	if err != nil {
		return "", domain.ErrInternal(err)
	}

	issuedAt := s.now()
	token, err := s.tokens.Issue(TokenClaims{
		ID:      jti,
		Email:   u.Email,
		Purpose: PurposePasswordReset,
	}, s.passwordResetTTL)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}

	_, err = s.users.UpdateByID(ctx, u.ID, domain.UserUpdate{
		SetReset: &domain.ResetState{
			TokenHash: s.tokens.Fingerprint(token),
			ExpiresAt: issuedAt.Add(s.passwordResetTTL),
		},
	})
	if err != nil {
		return "", err
	}

	subject, body, err := renderPasswordResetEmail(s.passwordResetBaseURL+token, s.passwordResetTTL)
	if err != nil {
		return "", domain.ErrInternal(err)
	}

	// The reset state is already committed here; a failed dispatch leaves a
	// live token nobody received until it expires or is superseded.
	if err := s.mail.Send(ctx, u.Email, subject, body); err != nil {
		s.observe("password_reset_request", "email_failed")
		var de *domain.Error
		if errors.As(err, &de) && de.Code == "email_dispatch_failed" {
			return "", de
		}
		return "", domain.ErrEmailDispatchFailed(err)
	}

	s.observe("password_reset_request", "sent")
	return token, nil
}

// ResetPassword redeems a reset token. The token must verify, carry the
// reset purpose, match the stored fingerprint of the claimed email's user
// and not be past the stored expiry. Redemption clears the reset state, so
// a token works at most once.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if newPassword == "" {
		return domain.ErrMissingField("newPassword")
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.observe("password_reset", "invalid_token")
		return err
	}
	if claims.Purpose != PurposePasswordReset || claims.Email == "" {
		s.observe("password_reset", "invalid_token")
		return domain.ErrTokenInvalid()
	}

	u, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			s.observe("password_reset", "invalid_or_expired")
			return domain.ErrInvalidOrExpiredToken()
		}
		return err
	}

	fp := s.tokens.Fingerprint(token)
	if !u.HasLiveReset(s.now()) || subtle.ConstantTimeCompare([]byte(fp), []byte(u.ResetTokenHash)) != 1 {
		s.observe("password_reset", "invalid_or_expired")
		return domain.ErrInvalidOrExpiredToken()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	_, err = s.users.UpdateByID(ctx, u.ID, domain.UserUpdate{
		PasswordHash:    &hash,
		ClearReset:      true,
		ExpectResetHash: fp,
	})
	if err != nil {
		if domain.Is(err, "user_not_found") {
			// Lost a race against another redemption or a new issuance.
			s.observe("password_reset", "invalid_or_expired")
			return domain.ErrInvalidOrExpiredToken()
		}
		return err
	}

	s.observe("password_reset", "success")
	return nil
}
