package bootstrap

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/baechuer/user-service/internal/application/auth"
	"github.com/baechuer/user-service/internal/config"
	"github.com/baechuer/user-service/internal/infrastructure/memory"
	"github.com/baechuer/user-service/internal/transport/http/router"
)

// --------------------------
// helpers
// --------------------------

func testConfig() *config.Config {
	return &config.Config{
		Env:                     "dev",
		HTTPAddr:                ":0",
		HTTPReadTimeout:         time.Second,
		HTTPWriteTimeout:        time.Second,
		HTTPIdleTimeout:         time.Second,
		JWTSecret:               "secret",
		JWTIssuer:               "user-service-test",
		AccessTokenTTL:          time.Hour,
		BcryptCost:              4,
		PasswordResetBaseURL:    "https://x/reset-password?token=",
		PasswordResetTokenTTL:   10 * time.Minute,
		ResetRevealUnknownEmail: true,
		ResetExposeToken:        true,
		StoreDriver:             config.StoreMemory,
		SeedDevUsers:            true,
		MailTransport:           config.MailLog,
		SecurityHeaders:         true,
	}
}

type recorder struct {
	events []string
}

func (r *recorder) add(e string) { r.events = append(r.events, e) }

func testDeps(rec *recorder) Deps {
	return Deps{
		LoadConfig: func() (*config.Config, error) { return testConfig(), nil },
		OpenStore: func(cfg *config.Config) (Store, func(), error) {
			return memory.NewUserRepo(), func() { rec.add("store closed") }, nil
		},
		NewMailer: func(cfg *config.Config) (auth.Mailer, func(), error) {
			return memory.NewLogMailer(testLogger()), func() { rec.add("mailer closed") }, nil
		},
		NewRouter: router.New,
	}
}

// --------------------------
// tests
// --------------------------

func TestNewServer_WiresWorkingHandler(t *testing.T) {
	rec := &recorder{}
	srv, cleanup, err := NewServerWithDeps(testDeps(rec))
	if err != nil {
		t.Fatalf("NewServerWithDeps: %v", err)
	}

	if srv.Addr != ":0" || srv.ReadTimeout != time.Second {
		t.Fatalf("server not configured from config: %+v", srv)
	}

	// dev seeding ran: a seeded user can log in
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"ada@example.com","password":"AdaPassword123!"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("login as seeded user: %d %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id middleware not wired")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers not wired")
	}

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/openapi.json"} {
		rr = httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "user_service_login_attempts_total") {
		t.Fatalf("auth observer not wired to metrics")
	}

	cleanup()
	if strings.Join(rec.events, ",") != "mailer closed,store closed" {
		t.Fatalf("cleanup must run in reverse order, got %v", rec.events)
	}
}

func TestNewServer_ConfigError(t *testing.T) {
	deps := testDeps(&recorder{})
	deps.LoadConfig = func() (*config.Config, error) { return nil, errors.New("bad env") }

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewServer_StoreError(t *testing.T) {
	deps := testDeps(&recorder{})
	deps.OpenStore = func(*config.Config) (Store, func(), error) { return nil, nil, errors.New("mongo down") }

	_, _, err := NewServerWithDeps(deps)
	if err == nil || !strings.Contains(err.Error(), "mongo down") {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestNewServer_MailerErrorClosesStore(t *testing.T) {
	rec := &recorder{}
	deps := testDeps(rec)
	deps.NewMailer = func(*config.Config) (auth.Mailer, func(), error) { return nil, nil, errors.New("amqp refused") }

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected error")
	}
	if strings.Join(rec.events, ",") != "store closed" {
		t.Fatalf("store must be closed on mailer failure, got %v", rec.events)
	}
}

func TestNewServer_RouterErrorRunsCleanup(t *testing.T) {
	rec := &recorder{}
	deps := testDeps(rec)
	deps.NewRouter = func(router.Deps) (http.Handler, error) { return nil, errors.New("bad routes") }

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.events) != 2 {
		t.Fatalf("expected both cleanups, got %v", rec.events)
	}
}

func TestDefaultStoreAndMailer_MemoryAndLog(t *testing.T) {
	cfg := testConfig()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	closeStore()
	if _, ok := store.(*memory.UserRepo); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	mailer, closeMailer, err := newMailer(cfg)
	if err != nil {
		t.Fatalf("newMailer: %v", err)
	}
	closeMailer()
	if _, ok := mailer.(*memory.LogMailer); !ok {
		t.Fatalf("expected log mailer, got %T", mailer)
	}

	cfg.StoreDriver = "nope"
	if _, _, err := openStore(cfg); err == nil {
		t.Fatal("expected unknown driver error")
	}
	cfg.MailTransport = "nope"
	if _, _, err := newMailer(cfg); err == nil {
		t.Fatal("expected unknown transport error")
	}
}
