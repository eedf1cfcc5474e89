package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the application's error taxonomy. Services return
// errors wrapping one of these; handlers map them to HTTP status codes with
// errors.Is, never by string matching.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	// Domain kinds for the host/guest state model.
	ErrRoleConflict = errors.New("role conflict") // host tried to act as guest (or vice versa)
	ErrSoleHost     = errors.New("sole host")     // removal would leave an event hostless
	ErrNotHost      = errors.New("not a host")    // user does not host the event
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// RoleConflict returns an AppError for the expected, recoverable case where
// a user holding one role for an event tries to take the other (a host
// RSVPing as a guest). Callers render the message to the user; it is not a
// failure of the request pipeline.
func RoleConflict(message string) *AppError {
	return &AppError{
		Err:     ErrRoleConflict,
		Message: message,
	}
}

// SoleHost returns an AppError for an operation that would leave an event
// with zero hosts. The caller must explicitly opt into deleting the event
// instead.
func SoleHost(message string) *AppError {
	return &AppError{
		Err:     ErrSoleHost,
		Message: message,
	}
}

// NotHost returns an AppError for host-only operations attempted on a user
// who does not currently host the event.
func NotHost(eventID, userID string) *AppError {
	return &AppError{
		Err:     ErrNotHost,
		Message: fmt.Sprintf("user %s is not a host of event %s", userID, eventID),
	}
}
