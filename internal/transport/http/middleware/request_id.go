package middleware

import (
	"net/http"

	reqctx "github.com/baechuer/user-service/internal/pkg/context"
)

const HeaderXRequestID = "X-Request-Id"

// RequestID propagates a sane inbound X-Request-Id or generates one,
// echoes it on the response and stores it in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := reqctx.SanitizeRequestID(r.Header.Get(HeaderXRequestID))
		if reqID == "" {
			reqID = reqctx.NewRequestID()
		}

		w.Header().Set(HeaderXRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), reqID)))
	})
}
