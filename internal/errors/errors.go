package errors

import (
	"errors"
	"fmt"
)

// Common error types for the FPL agent core
var (
	// Upstream errors
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Authentication errors
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidArtifact        = errors.New("invalid credential artifact")
	ErrLoginFailed            = errors.New("login failed")
	ErrSessionExpired         = errors.New("session expired")
	ErrSessionNotFound        = errors.New("session not found")

	// Name resolution errors
	ErrNoMatch        = errors.New("no match")
	ErrInvalidQuery   = errors.New("invalid query")
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
