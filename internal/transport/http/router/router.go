package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/baechuer/user-service/internal/validation"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	// Public
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	RequestPasswordReset(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)

	// Session required
	GetUsers(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
}

type Middleware = func(http.Handler) http.Handler

type Deps struct {
	Health HealthHandler
	Users  UserHandler

	// Validate returns the middleware enforcing a named schema.
	Validate func(schema string) Middleware
	AuthMW   Middleware

	// Optional
	RequestIDMW       Middleware
	CORSMW            Middleware
	SecurityHeadersMW Middleware
	AccessLogMW       Middleware
	MetricsMW         Middleware
	Metrics           http.Handler
	Docs              http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("nil Users handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.Validate == nil {
		return nil, fmt.Errorf("nil Validate middleware")
	}

	r := chi.NewRouter()
	if deps.RequestIDMW != nil {
		r.Use(deps.RequestIDMW)
	}
	r.Use(chimw.Recoverer)
	if deps.CORSMW != nil {
		r.Use(deps.CORSMW)
	}
	if deps.SecurityHeadersMW != nil {
		r.Use(deps.SecurityHeadersMW)
	}
	if deps.AccessLogMW != nil {
		r.Use(deps.AccessLogMW)
	}
	if deps.MetricsMW != nil {
		r.Use(deps.MetricsMW)
	}

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.Docs != nil {
		r.Method(http.MethodGet, "/openapi.json", deps.Docs)
	}

	v := deps.Validate
	u := deps.Users

	r.Route("/api", func(r chi.Router) {
		// --- Public ---
		r.With(v(validation.SchemaRegister)).Post("/register", u.Register)
		r.With(v(validation.SchemaLogin)).Post("/login", u.Login)
		r.With(v(validation.SchemaRequestPasswordReset)).Post("/request-password-reset", u.RequestPasswordReset)
		r.With(v(validation.SchemaResetPassword)).Put("/reset-password", u.ResetPassword) // ?token=...

		// --- Session required ---
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMW)

			r.Get("/getusers", u.GetUsers)
			r.Get("/{id}", u.GetUser)
			r.With(v(validation.SchemaUpdate)).Put("/update/{id}", u.UpdateUser)
			r.Delete("/delete/{id}", u.DeleteUser)
			r.With(v(validation.SchemaChangePassword)).Put("/change-password/{id}", u.ChangePassword)
		})
	})

	return r, nil
}
