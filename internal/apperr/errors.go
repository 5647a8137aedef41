// Package apperr defines the error taxonomy shared by the gateway, the stores
// and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller.
type Kind string

// Kind constants.
const (
	KindInvalidRequest Kind = "INVALID_REQUEST"
	KindConflict       Kind = "CONFLICT"
	KindNotFound       Kind = "NOT_FOUND"
	KindUpstream       Kind = "UPSTREAM_ERROR"
	KindStorage        Kind = "STORAGE_ERROR"
	KindInternal       Kind = "INTERNAL"
)

// Error is a classified error with an optional cause.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// InvalidRequest reports malformed or missing caller input.
func InvalidRequest(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate save.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports removal of an absent entry.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Upstream reports a remote provider failure. Message is the text shown to
// callers, so it should be the upstream-reported message when there is one.
func Upstream(message string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Cause: cause}
}

// Storage wraps a persistence failure.
func Storage(operation string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: operation, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to return to callers. Storage and internal
// failures are not described in detail.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "An unexpected error occurred"
	}
	switch appErr.Kind {
	case KindStorage:
		return "Failed to access saved videos"
	case KindInternal:
		return "An unexpected error occurred"
	default:
		return appErr.Message
	}
}
