// Package common defines shared constants and sentinel errors used across
// the roleboard layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrInvalidInput = errors.New("invalid input")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// Session token errors (invalid signature, malformed or expired).
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("session expired")

	// Role errors.
	ErrUnrecognizedRole = errors.New("unrecognized role")
)
