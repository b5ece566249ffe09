// Package errors defines the domain error kinds shared by every storefront module.
// Use cases return them, usually wrapped with context, and httputil maps each kind
// to one HTTP status.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the user, product, cart line or refresh token does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a unique constraint was hit, e.g. a second account for one email.
	ErrConflict = errors.New("conflict")

	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized: missing, invalid, expired or revoked credentials.
	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable: the database, cache or broker could not be reached.
	ErrUnavailable = errors.New("unavailable")
)

// New is errors.New, re-exported so callers need a single errors import.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message and keeps it matchable with Is. Wrap(nil) is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
