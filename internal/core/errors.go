package core

import (
	"errors"
	"fmt"
)

// Error codes for domain errors.
const (
	ErrCodeNotRegistered = "not_registered"
	ErrCodeAccessDenied  = "access_denied"
	ErrCodeNoAccess      = "no_access"
	ErrCodeNotFound      = "not_found"
	ErrCodeValidation    = "validation_error"
	ErrCodeAlreadyJoined = "already_joined"
	ErrCodeRateLimited   = "rate_limited"
	ErrCodeInternal      = "internal_error"
)

var (
	ErrNotRegistered = errors.New("not registered")
	ErrAccessDenied  = errors.New("access denied")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrAlreadyJoined = errors.New("already joined")
	ErrInvalidConfig = errors.New("invalid access configuration")

	// ErrNoAccess is returned on join when the identity belongs to no server.
	ErrNoAccess = fmt.Errorf("%w: no accessible servers", ErrAccessDenied)
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *CoreError) Error() string {
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

// toCoreError classifies err by its sentinel and keeps the wrapped text as message.
func toCoreError(err error) *CoreError {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce
	}

	code := ErrCodeInternal
	switch {
	case errors.Is(err, ErrNoAccess):
		code = ErrCodeNoAccess
	case errors.Is(err, ErrNotRegistered):
		code = ErrCodeNotRegistered
	case errors.Is(err, ErrAccessDenied):
		code = ErrCodeAccessDenied
	case errors.Is(err, ErrNotFound):
		code = ErrCodeNotFound
	case errors.Is(err, ErrValidation):
		code = ErrCodeValidation
	case errors.Is(err, ErrAlreadyJoined):
		code = ErrCodeAlreadyJoined
	}
	return &CoreError{Code: code, Message: err.Error(), Err: err}
}
