package model

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// Authentication failures. The credential errors are deliberately vague so
// that callers cannot distinguish an unknown email from a wrong password.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUserUnavailable    = errors.New("user account is not available")
	ErrSessionCompromised = errors.New("session invalidated for security, please log in again")
)

// ValidationError reports every failed password rule, not only the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// IsUnauthorized reports whether err belongs to the unauthorized error class.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrUserUnavailable) ||
		errors.Is(err, ErrSessionCompromised)
}
