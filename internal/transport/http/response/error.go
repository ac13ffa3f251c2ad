package response

import (
	"errors"
	"net/http"

	"github.com/baechuer/user-service/internal/domain"
	"github.com/baechuer/user-service/internal/logger"
	reqctx "github.com/baechuer/user-service/internal/pkg/context"
)

type ErrorBody struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Error   ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteError converts err into the failure envelope.
// Non-domain errors become a 500 internal_error without details.
// 5xx responses are logged together with the wrapped cause.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := "internal error"
	var meta map[string]string

	var de *domain.Error
	if errors.As(err, &de) {
		status = statusFromKind(de.Kind)
		code = de.Code
		message = de.Message
		meta = de.Meta
	}

	if status >= http.StatusInternalServerError {
		lg := logger.WithCtx(r.Context())
		lg.Error().Err(err).
			Str("code", code).
			Int("status", status).
			Str("path", r.URL.Path).
			Msg("request failed")
	}

	WriteJSON(w, status, ErrorBody{
		Success: false,
		Message: message,
		Error: ErrorPayload{
			Code:      code,
			Message:   message,
			Meta:      meta,
			RequestID: reqctx.GetRequestID(r.Context()),
		},
	})
}

func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUpstream:
		return http.StatusBadGateway
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
