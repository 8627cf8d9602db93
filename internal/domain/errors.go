package domain

import "errors"

// Token errors. Session gates treat ErrTokenExpired as retryable (on the
// calling side only); the other two are always terminal.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// Store errors.
var (
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrConflict          = errors.New("login handle already taken")
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)

// Input errors.
var (
	ErrValidation = errors.New("validation failed")
)

// External service errors.
var (
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)
