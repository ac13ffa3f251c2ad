// Package context carries request-scoped values shared by transport and logging.
package context

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// maxInboundRequestIDLen bounds client supplied ids before they reach logs.
const maxInboundRequestIDLen = 128

// NewRequestID returns a fresh random request id.
func NewRequestID() string {
	return uuid.NewString()
}

// SanitizeRequestID accepts a client supplied id if it is short and printable
// ASCII, otherwise returns "".
func SanitizeRequestID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxInboundRequestIDLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return ""
		}
	}
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
