package domain

import (
	"time"
)

// PasswordResetWindow is how long an issued reset token stays redeemable.
const PasswordResetWindow = 10 * time.Minute

type User struct {
	ID        string
	Firstname string
	Lastname  string
	Email     string
	Bio       string

	PasswordHash string

	// Fingerprint of the last issued reset token and its absolute expiry.
	// Both are set together and cleared together.
	ResetTokenHash string
	ResetExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasLiveReset reports whether a reset token is stored and not yet expired at now.
func (u User) HasLiveReset(now time.Time) bool {
	return u.ResetTokenHash != "" && u.ResetExpiresAt != nil && u.ResetExpiresAt.After(now)
}

// ResetState is the pair persisted when a reset token is issued.
type ResetState struct {
	TokenHash string
	ExpiresAt time.Time
}

// UserUpdate is a partial update. Nil pointers leave fields untouched.
// SetReset and ClearReset are mutually exclusive; SetReset wins if both are given.
type UserUpdate struct {
	Firstname    *string
	Lastname     *string
	Bio          *string
	PasswordHash *string

	SetReset   *ResetState
	ClearReset bool

	// ExpectResetHash, when non-empty, makes the update conditional on the
	// stored reset hash. Stores report ErrUserNotFound when it does not match.
	ExpectResetHash string
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.Firstname == nil && u.Lastname == nil && u.Bio == nil &&
		u.PasswordHash == nil && u.SetReset == nil && !u.ClearReset
}

// UserFilter narrows ListUsers. Zero value lists everyone.
type UserFilter struct {
	Search string
	From   *time.Time
	To     *time.Time
}
