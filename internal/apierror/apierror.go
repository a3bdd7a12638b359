// Package apierror defines the error taxonomy of the core services and the
// standardized error envelopes returned to clients. All errors surfaced to
// clients go through this package to ensure consistency and to prevent leaking
// internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every error the core can produce.
type Kind int

const (
	// KindUnexpected is anything unclassified. Logged with full detail
	// internally, surfaced as a generic failure.
	KindUnexpected Kind = iota
	// KindValidation is a malformed or missing input. Caller error, never retried.
	KindValidation
	// KindNotFound means a referenced entity is absent.
	KindNotFound
	// KindInvalidState is an illegal state transition or unrecognized enum value.
	KindInvalidState
	// KindConflict is a uniqueness violation.
	KindConflict
	// KindTransient is store lock contention, eligible for bounded retry.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "unexpected"
	}
}

// Error is the typed error every service returns. Fields is only populated
// for validation errors.
type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func NotFoundf(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func InvalidStatef(format string, args ...interface{}) *Error {
	return newf(KindInvalidState, format, args...)
}

func Conflictf(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

func Transientf(format string, args ...interface{}) *Error {
	return newf(KindTransient, format, args...)
}

// Unexpected wraps an internal error. The wrapped detail never reaches clients.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Msg: "Error interno del servidor", Err: err}
}

// KindOf extracts the Kind from any error chain. Plain errors are Unexpected.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// HTTPStatus maps an error kind to the HTTP status the handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ── Client-facing envelopes ──────────────────────────────────────────────────

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Envelope converts any service error into the JSON body clients receive.
// Unexpected errors are replaced by a generic message so no internal detail
// leaks out.
func Envelope(err error) interface{} {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Kind == KindValidation && len(ae.Fields) > 0 {
			return &ValidationError{Detail: ae.Msg, Fields: ae.Fields}
		}
		if ae.Kind == KindUnexpected {
			return New("Error interno del servidor")
		}
		return New(ae.Msg)
	}
	return New("Error interno del servidor")
}
