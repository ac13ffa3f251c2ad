package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/user-service/internal/domain"
)

type SchemaValidator interface {
	Validate(schema string, bag map[string]any) (map[string]string, error)
}

const maxValidateBody = 1 << 20

// Validate rejects requests whose merged input does not satisfy schema with
// 422 validation_failed and the per-field messages in error.meta.
//
// The input is the JSON body overlaid by path params and then by query
// params. The body is restored so handlers can decode it again.
func Validate(v SchemaValidator, schema string, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bag, err := requestBag(r)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			fields, err := v.Validate(schema, bag)
			if err != nil {
				writeErr(w, r, err)
				return
			}
			if len(fields) > 0 {
				writeErr(w, r, domain.ErrValidationFailed(fields))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestBag(r *http.Request) (map[string]any, error) {
	bag := map[string]any{}

	if r.Body != nil {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxValidateBody))
		_ = r.Body.Close()
		if err != nil {
			return nil, domain.ErrInvalidJSON(err)
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))

		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &bag); err != nil {
				return nil, domain.ErrInvalidJSON(err)
			}
			if bag == nil {
				return nil, domain.ErrInvalidJSON(errors.New("body must be a JSON object"))
			}
		}
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			if k == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			bag[k] = rctx.URLParams.Values[i]
		}
	}

	for k, vals := range r.URL.Query() {
		if len(vals) > 0 {
			bag[k] = vals[0]
		}
	}
	return bag, nil
}
