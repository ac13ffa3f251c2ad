package http_handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/user-service/internal/application/auth"
	"github.com/baechuer/user-service/internal/domain"
	"github.com/baechuer/user-service/internal/logger"
	"github.com/baechuer/user-service/internal/transport/http/dto"
	"github.com/baechuer/user-service/internal/transport/http/middleware"
	"github.com/baechuer/user-service/internal/transport/http/response"
)

type UserHandlerConfig struct {
	// RevealUnknownEmail answers a reset request for an unknown email with
	// 404 instead of the generic success response.
	RevealUnknownEmail bool
	// ExposeResetToken returns the raw reset token in the response body.
	ExposeResetToken bool
}

type UserHandler struct {
	svc *auth.Service
	cfg UserHandlerConfig
	now func() time.Time
}

func NewUserHandler(svc *auth.Service, cfg UserHandlerConfig) *UserHandler {
	return &UserHandler{svc: svc, cfg: cfg, now: time.Now}
}

// ---------- public ----------

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), req.ToInput())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("user_registered")

	response.Created(w, "user created successfully", dto.NewUserView(u))
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_logged_in")

	response.OK(w, "user login successfully!", dto.LoginData{
		Token:     res.Token,
		TokenType: res.TokenType,
		ExpiresIn: res.ExpiresIn,
	})
}

func (h *UserHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	token, err := h.svc.RequestPasswordReset(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	if token == "" {
		if h.cfg.RevealUnknownEmail {
			response.WriteError(w, r, domain.ErrUserNotFound())
			return
		}
		response.OK(w, "if the account exists, a reset email has been sent", dto.PasswordResetData{})
		return
	}

	data := dto.PasswordResetData{}
	if h.cfg.ExposeResetToken {
		data.Token = token
	}
	msg := "email sent successfully"
	if !h.cfg.RevealUnknownEmail {
		msg = "if the account exists, a reset email has been sent"
	}
	response.OK(w, msg, data)
}

// ResetPassword handles PUT /reset-password?token=...
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		response.WriteError(w, r, domain.ErrMissingField("token"))
		return
	}

	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), token, req.NewPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, "password updated successfully", nil)
}

// ---------- authenticated ----------

// GetUsers handles GET /getusers?search=&startDate=&endDate=
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.UserFilter{
		Search: strings.TrimSpace(q.Get("search")),
		From:   parseDateBound(q.Get("startDate"), false),
		To:     parseDateBound(q.Get("endDate"), true),
	}

	users, err := h.svc.ListUsers(r.Context(), filter)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, "user get successfully", dto.NewUserViews(users))
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, "", dto.NewUserView(u))
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.UpdateUser(r.Context(), chi.URLParam(r, "id"), req.ToInput())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, "user successfully updated", dto.NewUserView(u))
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		response.WriteError(w, r, err)
		return
	}

	actor, _ := middleware.UserIDFromContext(r.Context())
	logger.WithCtx(r.Context()).Info().
		Str("user_id", id).
		Str("actor_id", actor).
		Msg("user_deleted")

	response.OK(w, "your user has been deleted", nil)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	u, err := h.svc.ChangePassword(r.Context(), id, req.OldPassword, req.NewPassword)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", id).
		Msg("password_changed")

	response.OK(w, "password changed successfully", dto.NewUserView(u))
}
