package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/user-service/internal/logger"
	"github.com/baechuer/user-service/internal/transport/http/response"
)

// Pinger is implemented by every credential store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	timeout time.Duration
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store, timeout: 2 * time.Second}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			logger.WithCtx(r.Context()).Warn().Err(err).Msg("readiness check failed")
			response.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  "credential store unavailable",
			})
			return
		}
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
