package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/user-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID  map[string]domain.User
	seq   int
	clock func() time.Time

	// injected errors (if set, method returns error)
	getByIDErr    error
	getByEmailErr error
	listErr       error
	createErr     error
	updateErr     error
	deleteErr     error

	// record calls
	updates []domain.UserUpdate
	filters []domain.UserFilter
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}, clock: time.Now}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) get(id string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.User
	for _, u := range f.byID {
		if filter.Search == "" || strings.Contains(strings.ToLower(u.Firstname+" "+u.Lastname+" "+u.Bio), strings.ToLower(filter.Search)) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
	}
	f.seq++
	u.ID = fmt.Sprintf("u%d", f.seq)
	u.CreatedAt = f.clock()
	u.UpdatedAt = u.CreatedAt
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) UpdateByID(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates = append(f.updates, upd)
	if f.updateErr != nil {
		return domain.User{}, f.updateErr
	}
	u, ok := f.byID[id]
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
		exp := upd.SetReset.ExpiresAt
		u.ResetTokenHash = upd.SetReset.TokenHash
		u.ResetExpiresAt = &exp
	case upd.ClearReset:
		u.ResetTokenHash = ""
		u.ResetExpiresAt = nil
	}
	u.UpdatedAt = f.clock()
	f.byID[id] = u
	return u, nil
}

func (f *fakeUserRepo) DeleteByID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrUserNotFound()
	}
	delete(f.byID, id)
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error

	mu       sync.Mutex
	compared []string // hashes passed to Compare
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	h.mu.Lock()
	h.compared = append(h.compared, hash)
	h.mu.Unlock()

	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

// fakeTokens keeps issued claims in memory and honours expiry against clock.
type fakeTokens struct {
	mu     sync.Mutex
	seq    int
	issued map[string]TokenClaims
	clock  func() time.Time

	issueErr error
}

func newFakeTokens(clock func() time.Time) *fakeTokens {
	return &fakeTokens{issued: map[string]TokenClaims{}, clock: clock}
}

func (f *fakeTokens) Issue(c TokenClaims, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.seq++
	c.Exp = f.clock().Add(ttl)
	tok := fmt.Sprintf("tok-%s-%d-%s", c.Purpose, f.seq, c.ID)
	f.issued[tok] = c
	return tok, nil
}

func (f *fakeTokens) Verify(token string) (TokenClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.issued[token]
	if !ok || !c.Exp.After(f.clock()) {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	return c, nil
}

func (f *fakeTokens) Fingerprint(token string) string { return "fp:" + token }

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

// testClock is a settable clock shared by the service and the fakes.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type observed struct{ event, outcome string }

type testDeps struct {
	users  *fakeUserRepo
	hasher *fakeHasher
	tokens *fakeTokens
	mail   *fakeMailer
	clock  *testClock

	mu     sync.Mutex
	events []observed
}

func (d *testDeps) lastEvent() observed {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.events) == 0 {
		return observed{}
	}
	return d.events[len(d.events)-1]
}

/*
Service factory for tests
*/

func newSvcForTest(t *testing.T) (*Service, *testDeps) {
	t.Helper()

	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	d := &testDeps{
		users:  newFakeUserRepo(),
		hasher: &fakeHasher{},
		tokens: newFakeTokens(clock.Now),
		mail:   &fakeMailer{},
		clock:  clock,
	}
	d.users.clock = clock.Now

	svc := NewService(d.users, d.hasher, d.tokens, d.mail, Config{
		AccessTTL:            time.Hour,
		PasswordResetBaseURL: "https://fe/reset-password?token=",
	}).
		WithClock(clock.Now).
		WithObserver(func(event, outcome string) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.events = append(d.events, observed{event, outcome})
		})

	if svc == nil {
		t.Fatalf("svc is nil")
	}
	return svc, d
}

// seedUser stores a user whose password is pw under the fake hasher.
func seedUser(t *testing.T, d *testDeps, email, pw string) domain.User {
	t.Helper()
	u, err := d.users.Create(context.Background(), domain.User{
		Firstname:    "Ada",
		Lastname:     "Lovelace",
		Email:        email,
		Bio:          "math",
		PasswordHash: "hash:" + pw,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u
}

func strPtr(s string) *string { return &s }
