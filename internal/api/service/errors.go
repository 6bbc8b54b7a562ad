package service

import "errors"

// Sentinel errors returned by the services. The HTTP layer maps each of
// these onto one entry of the boundary error taxonomy; everything else is
// treated as an internal error.
var (
	// ErrValidation marks terminal client mistakes. It is always wrapped
	// with a detail message, e.g. fmt.Errorf("%w: password must be at least
	// 6 characters long", ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateIdentity is returned when a username or email is already
	// taken by another user.
	ErrDuplicateIdentity = errors.New("user already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// a caller cannot tell which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountInactive is returned only after a successful credential
	// match against a deactivated account.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrInvalidAPIKey covers unknown keys, revoked keys and keys owned by
	// deactivated accounts.
	ErrInvalidAPIKey = errors.New("invalid or inactive API key")

	// ErrNotFound is returned when the addressed resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the caller does not own the addressed
	// resource. This is the ownership guard's only failure mode.
	ErrForbidden = errors.New("caller does not own this resource")
)
