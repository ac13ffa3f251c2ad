package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/baechuer/user-service/internal/domain"
)

func TestRegister_EmptyEmail_ReturnsInvalidField(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "   ", Password: "secret1"})
	requireErrCode(t, err, "invalid_field")
}

func TestRegister_HashFail_ReturnsHashFailed(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	d.hasher.hashFn = func(pw string) (string, error) { return "", errors.New("boom") }

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "secret1"})
	requireErrCode(t, err, "hash_failed")
}

func TestRegister_Success_StoresHashNotPlaintext(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		Firstname: "Ada",
		Lastname:  "Lovelace",
		Email:     "  ada@x.com ",
		Password:  "secret1",
		Bio:       "math",
	})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected user ID set")
	}
	if u.Email != "ada@x.com" {
		t.Fatalf("expected trimmed email, got %q", u.Email)
	}
	stored := d.users.get(u.ID)
	if stored.PasswordHash == "secret1" || stored.PasswordHash == "" {
		t.Fatalf("expected hashed password, got %q", stored.PasswordHash)
	}
	if err := d.hasher.Compare(stored.PasswordHash, "secret1"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if got := d.lastEvent(); got != (observed{"register", "success"}) {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestRegister_DuplicateEmail_Conflict(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(t, d, "ada@x.com", "secret1")

	_, err := svc.Register(context.Background(), RegisterInput{Email: "ada@x.com", Password: "another1"})
	requireErrCode(t, err, "email_already_exists")
	if got := d.lastEvent(); got != (observed{"register", "email_exists"}) {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestLogin_EmptyFields_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	_, err := svc.Login(context.Background(), "", "")
	requireErrCode(t, err, "invalid_credentials")
}

func TestLogin_UnknownEmailAndWrongPassword_AreIndistinguishable(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(t, d, "ada@x.com", "secret1")

	_, errUnknown := svc.Login(context.Background(), "nobody@x.com", "secret1")
	_, errWrong := svc.Login(context.Background(), "ada@x.com", "wrong-pass")

	requireErrCode(t, errUnknown, "invalid_credentials")
	requireErrCode(t, errWrong, "invalid_credentials")
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("expected identical errors, got %q vs %q", errUnknown, errWrong)
	}

	// both paths run a hash comparison
	if len(d.hasher.compared) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(d.hasher.compared))
	}
}

func TestLogin_StoreFailure_Propagates(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	d.users.getByEmailErr = domain.ErrStoreUnavailable(errors.New("down"))

	_, err := svc.Login(context.Background(), "ada@x.com", "secret1")
	requireErrCode(t, err, "store_unavailable")
}

func TestLogin_SignFailure_ReturnsTokenSignFailed(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(t, d, "ada@x.com", "secret1")
	d.tokens.issueErr = errors.New("no key")

	_, err := svc.Login(context.Background(), "ada@x.com", "secret1")
	requireErrCode(t, err, "token_sign_failed")
}

func TestLogin_Success_IssuesSessionToken(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	u := seedUser(t, d, "ada@x.com", "secret1")

	res, err := svc.Login(context.Background(), "  ada@x.com  ", "secret1")
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if res.User.ID != u.ID {
		t.Fatalf("expected user %s, got %+v", u.ID, res.User)
	}
	if res.TokenType != "Bearer" || res.ExpiresIn != 3600 {
		t.Fatalf("unexpected token meta: %+v", res)
	}

	claims, err := d.tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Purpose != PurposeSession || claims.UserID != u.ID || claims.Email != u.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(d.users.updates) != 0 {
		t.Fatalf("login must not mutate the store")
	}
}
