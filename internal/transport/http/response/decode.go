package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/baechuer/user-service/internal/domain"
)

// maxBodyBytes caps request bodies; user payloads are a handful of strings.
const maxBodyBytes = 1 << 20

// DecodeJSON decodes a single JSON value from the request body into dst.
// Unknown fields are allowed; an empty body or trailing data is invalid_json.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return domain.ErrInvalidJSON(errors.New("empty body"))
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		return domain.ErrInvalidJSON(err)
	}

	// {}{} is rejected: the next decode must hit EOF.
	if err := dec.Decode(&struct{}{}); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.ErrInvalidJSON(err)
	}
	return domain.ErrInvalidJSON(errors.New("multiple JSON values"))
}
