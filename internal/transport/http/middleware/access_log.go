package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	reqctx "github.com/baechuer/user-service/internal/pkg/context"
)

// AccessLog logs one line per completed request. 4xx log at warn, 5xx at error.
func AccessLog(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			event := l.Info()
			switch {
			case status >= 500:
				event = l.Error()
			case status >= 400:
				event = l.Warn()
			}

			event.
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Int("bytes", ww.BytesWritten()).
				Str("request_id", reqctx.GetRequestID(r.Context())).
				Msg("http_request")
		})
	}
}

// routePattern prefers the chi pattern over the raw path to keep ids out of
// logs and metric labels.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}
