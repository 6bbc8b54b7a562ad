// Package apierr defines the error taxonomy exposed at the HTTP boundary.
// Every core operation maps onto exactly one of these kinds; the code is a
// stable machine-readable identifier and the description a human detail
// message that may be replaced or suppressed depending on environment.
package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stable error codes.
const (
	CodeValidationError    = "validation_error"
	CodeDuplicateIdentity  = "duplicate_identity"
	CodeInvalidCredentials = "invalid_credentials"
	CodeAccountInactive    = "account_inactive"
	CodeInvalidToken       = "invalid_token"
	CodeExpiredToken       = "expired_token"
	CodeMissingAPIKey      = "missing_api_key"
	CodeInvalidAPIKey      = "invalid_api_key"
	CodeNotFound           = "not_found"
	CodeForbidden          = "forbidden"
	CodeServerError        = "server_error"
)

// Error is an API error response. It implements the error interface and is
// used by HTTP handlers to write stable machine-readable error bodies.
type Error struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the stable error identifier (e.g., "invalid_credentials")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WithDetail returns a copy of the error carrying a more specific
// human-readable description. The code and status are unchanged, so clients
// keying off the identifier see no difference.
func (e *Error) WithDetail(detail string) *Error {
	return &Error{
		StatusCode:  e.StatusCode,
		Code:        e.Code,
		Description: detail,
	}
}

// WriteError writes this Error to an HTTP response writer.
func (e *Error) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrValidation is returned when the request is missing a required field,
	// includes a malformed value, or is otherwise something the client must
	// fix before retrying.
	ErrValidation = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        CodeValidationError,
		Description: "the request is malformed or missing required fields",
	}

	// ErrDuplicateIdentity is returned when a registration or profile update
	// collides with an existing username or email.
	ErrDuplicateIdentity = &Error{
		StatusCode:  http.StatusConflict,
		Code:        CodeDuplicateIdentity,
		Description: "a user with that username or email already exists",
	}

	// ErrInvalidCredentials is returned for both unknown-email and
	// wrong-password login failures so neither case leaks which check failed.
	ErrInvalidCredentials = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeInvalidCredentials,
		Description: "invalid credentials",
	}

	// ErrAccountInactive is returned only after a successful credential match
	// against a deactivated account.
	ErrAccountInactive = &Error{
		StatusCode:  http.StatusForbidden,
		Code:        CodeAccountInactive,
		Description: "user account is inactive",
	}

	// ErrInvalidToken is returned when the session token is missing, has a bad
	// signature, or is structurally malformed.
	ErrInvalidToken = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeInvalidToken,
		Description: "the session token is missing or invalid",
	}

	// ErrExpiredToken is returned when the session token is well-formed and
	// correctly signed but past its expiry.
	ErrExpiredToken = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeExpiredToken,
		Description: "the session token has expired",
	}

	// ErrMissingAPIKey is returned when the API key header is absent.
	ErrMissingAPIKey = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeMissingAPIKey,
		Description: "API key required",
	}

	// ErrInvalidAPIKey is returned when the presented API key is unknown or
	// has been revoked.
	ErrInvalidAPIKey = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeInvalidAPIKey,
		Description: "invalid or inactive API key",
	}

	// ErrNotFound is returned when the addressed resource does not exist.
	ErrNotFound = &Error{
		StatusCode:  http.StatusNotFound,
		Code:        CodeNotFound,
		Description: "resource not found",
	}

	// ErrForbidden is returned when the caller does not own the addressed
	// resource.
	ErrForbidden = &Error{
		StatusCode:  http.StatusForbidden,
		Code:        CodeForbidden,
		Description: "you do not have access to this resource",
	}

	// ErrServerError is returned for unexpected store or hashing failures.
	ErrServerError = &Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        CodeServerError,
		Description: "internal server error",
	}
)
