package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindUnprocessable  ErrKind = "unprocessable"  // 422
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindUpstream       ErrKind = "upstream"       // 502
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking sensitive details)
// - Meta: optional details (field, reason, per-field validation messages)
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ----------------------
// Validation errors (400 / 422)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

// ErrValidationFailed carries one message per offending field.
func ErrValidationFailed(fields map[string]string) *Error {
	return WithMeta(New(KindUnprocessable, "validation_failed", "unprocessable entity"), fields)
}

func ErrInvalidID() *Error {
	return New(KindValidation, "invalid_id", "this type of id is not valid")
}

func ErrEmptyBody() *Error {
	return New(KindValidation, "empty_body", "please enter some data")
}

func ErrSamePassword() *Error {
	return New(KindValidation, "same_password", "old password and new password are the same")
}

func ErrWrongPassword() *Error {
	return New(KindValidation, "wrong_password", "wrong password")
}

func ErrInvalidOrExpiredToken() *Error {
	return New(KindValidation, "invalid_or_expired_token", "invalid or expired token")
}

// ----------------------
// Auth errors (401)
// ----------------------

// IMPORTANT: use this for login failures to avoid user enumeration.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, "invalid_credentials", "invalid email or password")
}

func ErrTokenMissing() *Error {
	return New(KindAuth, "token_missing", "you are not logged in, please log in to get access")
}

func ErrTokenInvalid() *Error {
	return New(KindAuth, "token_invalid", "invalid token")
}

func ErrTokenExpired() *Error {
	return New(KindAuth, "token_expired", "token is expired")
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrEmailUpdateForbidden() *Error {
	return New(KindForbidden, "email_update_forbidden", "you cannot update email")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "user not found")
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, "email_already_exists", "user already exists")
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrStoreUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "store_unavailable", "credential store unavailable", cause)
}

// ErrEmailDispatchFailed is returned after the reset state was already
// committed; the stored token stays valid until it expires or is superseded.
func ErrEmailDispatchFailed(cause error) *Error {
	return Wrap(KindUpstream, "email_dispatch_failed", "error while sending email", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrValidationSchemaNotFound(name string) *Error {
	return WithMeta(New(KindInternal, "validation_schema_not_found", "no such validation schema exist"), map[string]string{
		"schema": name,
	})
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
