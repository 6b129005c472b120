// internal/platform/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so the HTTP layer can map it to a status code
// without inspecting message text.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindInvalidArgument   Kind = "invalid_argument"
	KindInvalidState      Kind = "invalid_state"
	KindInsufficientStock Kind = "insufficient_stock"
	KindConflict          Kind = "conflict"
	KindInconsistent      Kind = "inconsistent"
	KindNotifyFailed      Kind = "notify_failed"
	KindInternal          Kind = "internal"
)

// Error is a domain error with a machine-readable kind and a message safe
// to return to clients. Internal errors keep their cause for logs but are
// surfaced generically.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Internal wraps an unexpected storage or infrastructure failure. The cause
// is preserved for logging; clients only ever see the generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: cause}
}

// KindOf extracts the kind from err, defaulting to KindInternal for
// anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal {
			return "internal error"
		}
		return e.Message
	}
	return "internal error"
}

// StatusCode maps an error kind to an HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidArgument, KindInvalidState, KindInsufficientStock:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindInconsistent:
		return http.StatusInternalServerError
	case KindNotifyFailed:
		// The underlying record is durable; only the notification failed.
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
