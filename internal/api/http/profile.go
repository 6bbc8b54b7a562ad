package http

import (
	"encoding/json"
	"net/http"

	"github.com/cyanix-ai/cyanix/internal/api/service"
	"github.com/cyanix-ai/cyanix/pkg/apierr"
	"github.com/cyanix-ai/cyanix/pkg/httpx"
)

// ProfileHandler serves the token-guarded account endpoints.
type ProfileHandler struct {
	AuthService *service.AuthService
	Dev         bool
}

// HandleGetProfile handles GET /api/auth/profile
//
//	@Summary		Fetch the caller's own account
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	profileResponse
//	@Failure		401	{object}	apierr.Error	"invalid_token"
//	@Router			/api/auth/profile [get].
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.AuthService.Profile(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profileResponse{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		Active:    user.Active,
	})
}

// HandleUpdateProfile handles PUT /api/auth/profile
//
//	@Summary		Update username, email and/or password
//	@Description	Omitted or empty fields keep their current value.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		updateProfileRequest	true	"fields to change"
//	@Success		200		{object}	updateProfileResponse
//	@Failure		409		{object}	apierr.Error	"duplicate_identity"
//	@Router			/api/auth/profile [put].
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidToken.WriteError(w)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrValidation.WriteError(w)
		return
	}

	user, err := h.AuthService.UpdateProfile(
		r.Context(), caller.ID,
		req.Username, req.Email, req.Password,
	)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, updateProfileResponse{
		Message: "Profile updated successfully",
		User: userSummary{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

// HandleDeactivate handles DELETE /api/auth/profile
//
//	@Summary		Deactivate the caller's own account
//	@Description	Soft-deactivation: the record is kept and logins start failing.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	statusResponse
//	@Router			/api/auth/profile [delete].
func (h *ProfileHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.AuthService.Deactivate(r.Context(), caller.ID); err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusResponse{
		Message: "Account deactivated successfully",
	})
}
