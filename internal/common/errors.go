// Package common defines shared constants and sentinel errors used across
// the vault. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Boundary errors, each mapped to exactly one HTTP status.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrorInternal      = errors.New("internal error")
	ErrRateLimited     = errors.New("too many requests")

	// Token errors. Every verification failure collapses into ErrInvalidToken.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenReplay  = errors.New("token already used")

	// Cryptographic errors. ErrIntegrity means stored ciphertext failed
	// authentication: data corruption or tampering.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrConfiguration aborts startup.
	ErrConfiguration = errors.New("configuration error")
)
