// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer maps them to
// status codes through HTTPStatus.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a local or remote resource was not found.
	KindNotFound
	// KindValidation indicates invalid input data rejected before any I/O.
	KindValidation
	// KindConflict indicates a conflict with existing state.
	KindConflict
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindBadRequest indicates a malformed request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
	// KindSlotFull indicates the requested appointment slot has no capacity left.
	KindSlotFull
	// KindRemoteValidation indicates the external CRM rejected the payload shape.
	// Details carries the field-level messages.
	KindRemoteValidation
	// KindTransient indicates a network failure, timeout or remote 5xx.
	KindTransient
	// KindConfiguration indicates missing or invalid process configuration.
	KindConfiguration
)

// String returns a short name for logging.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad_request"
	case KindInternal:
		return "internal"
	case KindSlotFull:
		return "slot_full"
	case KindRemoteValidation:
		return "remote_validation"
	case KindTransient:
		return "transient"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string // Operation that failed (optional)
	Err     error  // Underlying error (optional)
	Details any    // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict, KindSlotFull:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRemoteValidation:
		return http.StatusUnprocessableEntity
	case KindTransient:
		return http.StatusBadGateway
	case KindInternal, KindConfiguration:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the operation and returns the same error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails sets the response details and returns the same error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict creates a conflict error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// SlotFull creates a capacity exhausted error.
func SlotFull(message string) *Error {
	return New(KindSlotFull, message)
}

// RemoteValidation creates an error for a payload the external system rejected.
func RemoteValidation(message string, fields map[string][]string) *Error {
	return New(KindRemoteValidation, message).WithDetails(fields)
}

// Transient creates an error for a retryable remote or network failure.
func Transient(message string, err error) *Error {
	return Wrap(KindTransient, message, err)
}

// Configuration creates an error for missing or invalid configuration.
func Configuration(message string) *Error {
	return New(KindConfiguration, message)
}

// GetKind extracts the error kind from an error chain.
// Returns KindUnknown if no *Error is found.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err carries an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// FieldErrors returns the remote validation fields carried by err, if any.
func FieldErrors(err error) map[string][]string {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}
	fields, _ := e.Details.(map[string][]string)
	return fields
}
