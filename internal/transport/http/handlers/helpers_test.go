package http_handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/user-service/internal/application/auth"
	"github.com/baechuer/user-service/internal/infrastructure/memory"
	"github.com/baechuer/user-service/internal/infrastructure/security"
	"github.com/baechuer/user-service/internal/transport/http/middleware"
	"github.com/baechuer/user-service/internal/transport/http/response"
	"github.com/baechuer/user-service/internal/transport/http/router"
	"github.com/baechuer/user-service/internal/validation"
)

// -------------------------
// Test wiring
// -------------------------

type testApp struct {
	h      http.Handler
	users  *memory.UserRepo
	mailer *memory.LogMailer
}

func newTestApp(t *testing.T, cfg UserHandlerConfig) *testApp {
	t.Helper()

	users := memory.NewUserRepo()
	mailer := memory.NewLogMailer(zerolog.Nop())
	tokens, err := security.NewJWTService("test-secret", "user-service-test")
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}
	v, err := validation.New()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	svc := auth.NewService(users, security.NewBcryptHasher(bcrypt.MinCost), tokens, mailer, auth.Config{
		AccessTTL:             time.Hour,
		PasswordResetTokenTTL: 10 * time.Minute,
		PasswordResetBaseURL:  "https://frontend.test/reset-password?token=",
	})

	h, err := router.New(router.Deps{
		Health: NewHealthHandler(users),
		Users:  NewUserHandler(svc, cfg),
		AuthMW: middleware.Auth(tokens, response.WriteError),
		Validate: func(schema string) router.Middleware {
			return middleware.Validate(v, schema, response.WriteError)
		},
		RequestIDMW: middleware.RequestID,
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return &testApp{h: h, users: users, mailer: mailer}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code      string            `json:"code"`
		Meta      map[string]string `json:"meta"`
		RequestID string            `json:"request_id"`
	} `json:"error"`
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.h.ServeHTTP(rr, req)

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v; body=%s", err, rr.Body.String())
	}
	return rr.Code, env
}

func mustData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v; data=%s", err, string(env.Data))
	}
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"firstname": "Ada",
		"lastname":  "Lovelace",
		"email":     email,
		"password":  "secret123",
		"bio":       "analyst",
	}
}

// registerAndLogin returns the new user's id and a session token.
func (a *testApp) registerAndLogin(t *testing.T, email string) (string, string) {
	t.Helper()

	code, env := a.do(t, http.MethodPost, "/api/register", "", registerBody(email))
	if code != http.StatusCreated {
		t.Fatalf("register: %d %+v", code, env)
	}
	var u struct {
		ID string `json:"id"`
	}
	mustData(t, env, &u)

	code, env = a.do(t, http.MethodPost, "/api/login", "", map[string]any{"email": email, "password": "secret123"})
	if code != http.StatusOK {
		t.Fatalf("login: %d %+v", code, env)
	}
	var l struct {
		Token string `json:"token"`
	}
	mustData(t, env, &l)
	return u.ID, l.Token
}
