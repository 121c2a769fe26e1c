// Package common defines the error kinds and small helpers shared by the
// server layers. Callers should use errors.Is to match the kinds and
// errors.As with *AppError to obtain the caller-facing message.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level kinds.
	ErrorValidation    = errors.New("validation error")
	ErrorConflict      = errors.New("conflict")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorInvalidToken  = errors.New("invalid token")
	ErrorDelivery      = errors.New("delivery failed")
	ErrorConfiguration = errors.New("configuration error")
	ErrorInternal      = errors.New("internal error")

	// Bearer token lifecycle.
	ErrorTokenExpired = errors.New("token expired")
)

// AppError is a failure meant to be shown to the caller. Message is safe to
// expose; Kind is one of the sentinel errors above.
type AppError struct {
	Kind    error
	Message string
}

// NewAppError builds an AppError of the given kind.
func NewAppError(kind error, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// Caller-facing failures of the auth workflow.
var (
	ErrMissingFields      = NewAppError(ErrorValidation, "fill in all the fields")
	ErrUserExists         = NewAppError(ErrorConflict, "user already exists")
	ErrInvalidCredentials = NewAppError(ErrorUnauthorized, "invalid credentials")
	ErrUserNotFound       = NewAppError(ErrorNotFound, "user not found")
	ErrInvalidResetToken  = NewAppError(ErrorInvalidToken, "invalid or expired token")
	ErrEmailNotSent       = NewAppError(ErrorDelivery, "email could not be sent")
	ErrAvatarNotSet       = NewAppError(ErrorNotFound, "avatar not set")
	ErrPasswordTooLong    = NewAppError(ErrorValidation, "password must be at most 72 bytes")
)
