package domain

import "errors"

// Sentinel errors returned by services and repositories. Handlers map these
// to HTTP statuses in one place.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too short")
	ErrPasswordTooLong    = errors.New("password too long")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrTokenSignature     = errors.New("token signature invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrStoreUnavailable   = errors.New("store unavailable")
)
