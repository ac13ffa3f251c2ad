package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/user-service/internal/application/auth"
	"github.com/baechuer/user-service/internal/config"
	"github.com/baechuer/user-service/internal/infrastructure/db/mongo"
	"github.com/baechuer/user-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/user-service/internal/infrastructure/email"
	"github.com/baechuer/user-service/internal/infrastructure/memory"
	"github.com/baechuer/user-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/user-service/internal/infrastructure/security"
	"github.com/baechuer/user-service/internal/logger"
	"github.com/baechuer/user-service/internal/transport/http/docs"
	http_handlers "github.com/baechuer/user-service/internal/transport/http/handlers"
	"github.com/baechuer/user-service/internal/transport/http/middleware"
	"github.com/baechuer/user-service/internal/transport/http/response"
	"github.com/baechuer/user-service/internal/transport/http/router"
	"github.com/baechuer/user-service/internal/validation"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

// Store is a credential store that can also answer readiness probes.
type Store interface {
	auth.UserRepo
	Ping(ctx context.Context) error
}

type Deps struct {
	LoadConfig func() (*config.Config, error)

	// OpenStore returns the store selected by cfg.StoreDriver and a cleanup func.
	OpenStore func(cfg *config.Config) (Store, func(), error)

	// NewMailer returns the dispatcher selected by cfg.MailTransport and a cleanup func.
	NewMailer func(cfg *config.Config) (auth.Mailer, func(), error)

	NewRouter func(router.Deps) (http.Handler, error)
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()

	// 1) credential store
	store, closeStore, err := deps.OpenStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	cleanupFns = append(cleanupFns, closeStore)
	logger.Logger.Info().Str("driver", cfg.StoreDriver).Msg("credential store ready")

	// 2) email dispatcher
	mailer, closeMailer, err := deps.NewMailer(cfg)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, fmt.Errorf("init %s mailer: %w", cfg.MailTransport, err)
	}
	cleanupFns = append(cleanupFns, closeMailer)
	logger.Logger.Info().Str("transport", cfg.MailTransport).Msg("email dispatcher ready")

	// 3) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt service")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens, err := security.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer,
		security.WithDistinguishExpired(cfg.TokenDistinguishExpired))
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// seed (dev only)
	if cfg.SeedDevUsers {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		n := memory.SeedUsers(ctx, store, hasher, memory.DevSeedUsers, logger.Logger)
		cancel()
		logger.Logger.Info().Int("created", n).Msg("dev users seeded")
	}

	// 4) service
	svc := auth.NewService(store, hasher, tokens, mailer, auth.Config{
		AccessTTL:             cfg.AccessTokenTTL,
		PasswordResetTokenTTL: cfg.PasswordResetTokenTTL,
		PasswordResetBaseURL:  cfg.PasswordResetBaseURL,
	}).WithObserver(middleware.ObserveAuthEvent)

	// 5) validation
	v, err := validation.New()
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 6) handlers + middleware
	usersH := http_handlers.NewUserHandler(svc, http_handlers.UserHandlerConfig{
		RevealUnknownEmail: cfg.ResetRevealUnknownEmail,
		ExposeResetToken:   cfg.ResetExposeToken,
	})
	healthH := http_handlers.NewHealthHandler(store)

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health: healthH,
		Users:  usersH,
		AuthMW: middleware.Auth(tokens, response.WriteError),
		Validate: func(schema string) router.Middleware {
			return middleware.Validate(v, schema, response.WriteError)
		},
		RequestIDMW:       middleware.RequestID,
		CORSMW:            middleware.CORS(cfg.CORSAllowedOrigins),
		SecurityHeadersMW: securityHeaders(cfg),
		AccessLogMW:       middleware.AccessLog(logger.Logger),
		MetricsMW:         middleware.Metrics,
		Metrics:           promhttp.Handler(),
		Docs:              docs.Handler(),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		OpenStore:  openStore,
		NewMailer:  newMailer,
		NewRouter:  router.New,
	}
}

func openStore(cfg *config.Config) (Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := config.NewMongo(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}

		repo := mongo.NewUserRepo(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, err
		}
		return repo, disconnect, nil

	case config.StorePostgres:
		db, err := config.NewDB(cfg.DBAddr, cfg.DBDebug, logger.Logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepo(db), func() { _ = db.Close() }, nil

	case config.StoreMemory:
		logger.Logger.Warn().Msg("using in-memory credential store; data is lost on restart")
		return memory.NewUserRepo(), func() {}, nil
	}
	return nil, nil, errors.New("unknown store driver: " + cfg.StoreDriver)
}

func newMailer(cfg *config.Config) (auth.Mailer, func(), error) {
	switch cfg.MailTransport {
	case config.MailSMTP:
		return email.NewSMTPMailer(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Timeout:  cfg.SMTPTimeout,
			Insecure: cfg.SMTPInsecure,
		}, logger.Logger), func() {}, nil

	case config.MailRabbitMQ:
		m, err := rabbitmq.NewMailer(rabbitmq.Config{
			URL:      cfg.RabbitURL,
			Exchange: cfg.RabbitExchange,
		}, logger.Logger)
		if err != nil {
			return nil, nil, err
		}
		return m, func() { _ = m.Close() }, nil

	case config.MailLog:
		return memory.NewLogMailer(logger.Logger), func() {}, nil
	}
	return nil, nil, errors.New("unknown mail transport: " + cfg.MailTransport)
}

/*
========================
 helpers
========================
*/

func securityHeaders(cfg *config.Config) router.Middleware {
	if !cfg.SecurityHeaders {
		return nil
	}
	return middleware.SecurityHeaders(cfg.Env == "prod")
}

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
