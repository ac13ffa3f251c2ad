package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS answers preflights and sets CORS headers for the listed origins.
// Entries may use a single wildcard, e.g. "https://*.example.com".
// With no origins it returns nil so the router skips it.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		return nil
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderXRequestID},
		ExposedHeaders:   []string{HeaderXRequestID},
		AllowCredentials: false,
		MaxAge:           3600,
	})
}

// SecurityHeaders sets conservative response headers for a JSON API.
// HSTS is only sent when hsts is true (prod behind TLS).
func SecurityHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Cache-Control", "no-store")
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
