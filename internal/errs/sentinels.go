// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrValidation indicates a malformed or schema-violating request body.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated indicates a missing bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates a revoked/invalid token or a role mismatch.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the requested entity or route does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique key violation (email taken, character id in use).
	ErrConflict = errors.New("conflict")
)
