package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baechuer/user-service/internal/application/auth"
	"github.com/baechuer/user-service/internal/domain"
)

// ---- fakes ----

type fakeVerifier struct {
	claims auth.TokenClaims
	err    error
	calls  int
	gotTok string
}

func (f *fakeVerifier) Verify(token string) (auth.TokenClaims, error) {
	f.calls++
	f.gotTok = token
	return f.claims, f.err
}

type writeErrRecorder struct {
	calls int
	last  error
}

func (w *writeErrRecorder) fn(_ http.ResponseWriter, _ *http.Request, err error) {
	w.calls++
	w.last = err
}

type nextRecorder struct {
	calls    int
	gotUID   string
	gotEmail string
}

func (n *nextRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.calls++
	n.gotUID, _ = UserIDFromContext(r.Context())
	n.gotEmail, _ = EmailFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func runAuthMW(t *testing.T, verifier TokenVerifier, authz string) (*writeErrRecorder, *nextRecorder) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	we := &writeErrRecorder{}
	nx := &nextRecorder{}

	Auth(verifier, we.fn)(nx).ServeHTTP(httptest.NewRecorder(), req)
	return we, nx
}

// ---- tests ----

func TestAuth_RejectsWithoutCallingVerifier(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"basic scheme":   "Basic abc",
		"no token":       "Bearer",
		"blank token":    "Bearer    ",
	}
	for name, authz := range cases {
		t.Run(name, func(t *testing.T) {
			v := &fakeVerifier{}
			we, nx := runAuthMW(t, v, authz)

			if nx.calls != 0 {
				t.Fatalf("expected next not called")
			}
			if we.calls != 1 || !domain.Is(we.last, "token_missing") {
				t.Fatalf("expected one token_missing, got calls=%d err=%v", we.calls, we.last)
			}
			if v.calls != 0 {
				t.Fatalf("verifier should not be called")
			}
		})
	}
}

func TestAuth_VerifierError_PropagatesToWriteErr(t *testing.T) {
	v := &fakeVerifier{err: domain.ErrTokenExpired()}

	we, nx := runAuthMW(t, v, "Bearer abc")

	if nx.calls != 0 {
		t.Fatalf("expected next not called")
	}
	if !domain.Is(we.last, "token_expired") {
		t.Fatalf("expected token_expired, got %v", we.last)
	}
	if v.calls != 1 || v.gotTok != "abc" {
		t.Fatalf("expected verifier called with token=abc, calls=%d gotTok=%q", v.calls, v.gotTok)
	}
}

func TestAuth_LowercaseBearerAccepted(t *testing.T) {
	v := &fakeVerifier{claims: auth.TokenClaims{UserID: "u-1", Purpose: auth.PurposeSession}}

	we, nx := runAuthMW(t, v, "bearer tok")

	if we.calls != 0 || nx.calls != 1 {
		t.Fatalf("expected pass-through, writeErr=%d next=%d", we.calls, nx.calls)
	}
}

func TestAuth_ResetTokenRejected(t *testing.T) {
	v := &fakeVerifier{claims: auth.TokenClaims{
		Email:   "ada@example.com",
		Purpose: auth.PurposePasswordReset,
	}}

	we, nx := runAuthMW(t, v, "Bearer reset-tok")

	if nx.calls != 0 {
		t.Fatalf("reset token must not authenticate")
	}
	if !domain.Is(we.last, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", we.last)
	}
}

func TestAuth_ClaimsMissingUserID_ReturnsTokenInvalid(t *testing.T) {
	v := &fakeVerifier{claims: auth.TokenClaims{UserID: "   ", Purpose: auth.PurposeSession}}

	we, nx := runAuthMW(t, v, "Bearer abc")

	if nx.calls != 0 {
		t.Fatalf("expected next not called")
	}
	if !domain.Is(we.last, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", we.last)
	}
}

func TestAuth_ValidSession_InjectsContext(t *testing.T) {
	v := &fakeVerifier{claims: auth.TokenClaims{
		UserID:  "u-1",
		Email:   "ada@example.com",
		Purpose: auth.PurposeSession,
	}}

	we, nx := runAuthMW(t, v, "Bearer tok")

	if we.calls != 0 {
		t.Fatalf("expected writeErr not called, got %d (%v)", we.calls, we.last)
	}
	if nx.calls != 1 {
		t.Fatalf("expected next called once, got %d", nx.calls)
	}
	if nx.gotUID != "u-1" || nx.gotEmail != "ada@example.com" {
		t.Fatalf("unexpected ctx identity uid=%q email=%q", nx.gotUID, nx.gotEmail)
	}
}
