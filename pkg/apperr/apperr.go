// Package apperr defines the error taxonomy shared by providers, the session
// orchestrator and the HTTP layer. Every error that crosses a package boundary
// is one of four kinds so handlers can map it to a status without inspecting
// provider-specific details.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and retry decisions.
type Kind int

const (
	// KindUnknown is any error not produced through this package.
	KindUnknown Kind = iota
	// KindValidation is bad caller input; no external call was made.
	KindValidation
	// KindNotFound is an unknown event or resource id.
	KindNotFound
	// KindAuth is a credential or token failure that survived one retry.
	KindAuth
	// KindUpstream is any other external-service failure, timeouts included.
	KindUpstream
)

// Error carries a kind, a caller-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a KindValidation error with the aggregated message.
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound returns a KindNotFound error.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Auth returns a KindAuth error wrapping cause.
func Auth(message string, cause error) error {
	return &Error{Kind: KindAuth, Message: message, Err: cause}
}

// Upstream returns a KindUpstream error wrapping cause.
func Upstream(message string, cause error) error {
	return &Error{Kind: KindUpstream, Message: message, Err: cause}
}

// Upstreamf formats a KindUpstream error.
func Upstreamf(format string, args ...any) error {
	return &Error{Kind: KindUpstream, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the caller-safe message for err. Causes are not exposed;
// they belong in logs, not responses.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps err to a response status. Auth failures surface as 500:
// the credentials that failed are the server's upstream credentials, not the
// caller's.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusInternalServerError
	case KindUpstream:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
