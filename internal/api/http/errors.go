package http

import (
	"errors"
	"net/http"

	"github.com/cyanix-ai/cyanix/internal/api/service"
	"github.com/cyanix-ai/cyanix/pkg/apierr"
	"github.com/cyanix-ai/cyanix/pkg/slogx"
)

// mapServiceError translates a service sentinel into its boundary error.
// Anything unrecognised is an internal error.
func mapServiceError(err error) *apierr.Error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return apierr.ErrValidation
	case errors.Is(err, service.ErrDuplicateIdentity):
		return apierr.ErrDuplicateIdentity
	case errors.Is(err, service.ErrInvalidCredentials):
		return apierr.ErrInvalidCredentials
	case errors.Is(err, service.ErrAccountInactive):
		return apierr.ErrAccountInactive
	case errors.Is(err, service.ErrInvalidAPIKey):
		return apierr.ErrInvalidAPIKey
	case errors.Is(err, service.ErrNotFound):
		return apierr.ErrNotFound
	case errors.Is(err, service.ErrForbidden):
		return apierr.ErrForbidden
	default:
		return apierr.ErrServerError
	}
}

// writeServiceError maps err onto the boundary taxonomy and writes it. In
// dev the concrete error text is exposed as the description; elsewhere
// clients get only the canned description for the error kind.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, dev bool) {
	apiErr := mapServiceError(err)
	if apiErr == apierr.ErrServerError {
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
	}
	if dev {
		apiErr = apiErr.WithDetail(err.Error())
	}
	apiErr.WriteError(w)
}
