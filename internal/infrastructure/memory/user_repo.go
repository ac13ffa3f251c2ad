package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/baechuer/user-service/internal/domain"
)

// UserRepo is an in-process credential store for local development and tests.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userID
	now     func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	if !validID(id) {
		return domain.User{}, domain.ErrInvalidID()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

// List returns matching users ordered by creation time.
func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		if matches(u, f) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func matches(u domain.User, f domain.UserFilter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.Firstname), q) &&
			!strings.Contains(strings.ToLower(u.Lastname), q) &&
			!strings.Contains(strings.ToLower(u.Bio), q) {
			return false
		}
	}
	if f.From != nil && u.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && u.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}

	u.ID = newID()
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

func (r *UserRepo) UpdateByID(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	if !validID(id) {
		return domain.User{}, domain.ErrInvalidID()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	if upd.ExpectResetHash != "" && u.ResetTokenHash != upd.ExpectResetHash {
		return domain.User{}, domain.ErrUserNotFound()
	}

	if upd.Firstname != nil {
		u.Firstname = *upd.Firstname
	}
	if upd.Lastname != nil {
		u.Lastname = *upd.Lastname
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	switch {
	case upd.SetReset != nil:
		exp := upd.SetReset.ExpiresAt.UTC()
		u.ResetTokenHash = upd.SetReset.TokenHash
		u.ResetExpiresAt = &exp
	case upd.ClearReset:
		u.ResetTokenHash = ""
		u.ResetExpiresAt = nil
	}
	u.UpdatedAt = r.now().UTC()

	r.byID[id] = u
	return u, nil
}

func (r *UserRepo) DeleteByID(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrInvalidID()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound()
	}
	delete(r.byID, id)
	delete(r.byEmail, u.Email)
	return nil
}

// Ping always succeeds; it lets the memory store back readiness checks.
func (r *UserRepo) Ping(ctx context.Context) error { return nil }

// validID accepts the 24 hex char shape produced by newID.
func validID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

func newID() string {
	// 12 bytes => 24 hex chars, same shape as a Mongo ObjectID
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
