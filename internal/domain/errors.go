package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrNotFound           = errors.New("not found")
	ErrStorageFailure     = errors.New("storage failure")
	ErrOTPNotFound        = errors.New("no verification code for this email")
	ErrOTPExpired         = errors.New("verification code expired")
	ErrOTPMismatch        = errors.New("verification code mismatch")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = errors.New("too many failed attempts")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrNoDonors           = errors.New("no donors to export")
	ErrSelfDelete         = errors.New("cannot delete the signed-in admin")
)

// ValidationError reports a rejected form field. It unwraps to ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a *ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// LockoutError is returned while admin login is blocked.
type LockoutError struct {
	Until time.Time
	Now   time.Time
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("%s: locked until %s", ErrLockedOut, e.Until.UTC().Format(time.RFC3339))
}

func (e *LockoutError) Unwrap() error { return ErrLockedOut }

// RetryAfter is the remaining lock duration, never negative.
func (e *LockoutError) RetryAfter() time.Duration {
	d := e.Until.Sub(e.Now)
	if d < 0 {
		return 0
	}
	return d
}
