package http

import (
	"encoding/json"
	"net/http"

	"github.com/cyanix-ai/cyanix/internal/api/service"
	"github.com/cyanix-ai/cyanix/pkg/apierr"
	"github.com/cyanix-ai/cyanix/pkg/httpx"
)

// AuthHandler serves the unauthenticated credential endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
	Dev         bool
}

// HandleRegister handles POST /api/auth/register
//
//	@Summary		Register a new account
//	@Description	Creates an account and returns a session token for it.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"username, email, password"
//	@Success		201		{object}	authResponse
//	@Failure		400		{object}	apierr.Error	"validation_error"
//	@Failure		409		{object}	apierr.Error	"duplicate_identity"
//	@Router			/api/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrValidation.WriteError(w)
		return
	}

	user, token, err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   token,
		User: userSummary{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

// HandleLogin handles POST /api/auth/login
//
//	@Summary		Authenticate with email and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"email, password"
//	@Success		200		{object}	authResponse
//	@Failure		401		{object}	apierr.Error	"invalid_credentials"
//	@Failure		403		{object}	apierr.Error	"account_inactive"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrValidation.WriteError(w)
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   token,
		User: userSummary{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}
