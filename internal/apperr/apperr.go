// Package apperr defines the error taxonomy surfaced at the request boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindValidation      Kind = "validation_error"
)

// Error is an application error carrying its HTTP status.
type Error struct {
	Kind    Kind              `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"-"`
	Details map[string]string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unauthenticated reports a missing or unusable credential. The message is deliberately generic.
func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "could not validate credentials", Status: http.StatusUnauthorized}
}

// BadCredentials reports a failed password login.
func BadCredentials() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "Incorrect email or password", Status: http.StatusUnauthorized}
}

// Forbidden reports a denied action with a human readable reason.
func Forbidden(reason string) *Error {
	return &Error{Kind: KindForbidden, Message: reason, Status: http.StatusForbidden}
}

// NotFound reports a missing primary entity.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource), Status: http.StatusNotFound}
}

// Conflict reports a violated state precondition. status is 400 or 409 depending on the rule.
func Conflict(status int, message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Status: status}
}

// Validation reports a single malformed field.
func Validation(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("validation failed: %s", message),
		Status:  http.StatusBadRequest,
		Details: map[string]string{field: message},
	}
}

// Validations reports several malformed fields at once.
func Validations(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "one or more fields failed validation",
		Status:  http.StatusBadRequest,
		Details: fields,
	}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
