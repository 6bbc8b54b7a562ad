package http

import (
	"encoding/json"
	"net/http"

	"github.com/cyanix-ai/cyanix/internal/api/service"
	"github.com/cyanix-ai/cyanix/pkg/apierr"
	"github.com/cyanix-ai/cyanix/pkg/httpx"
)

// KeysHandler serves the token-guarded API key management endpoints.
type KeysHandler struct {
	APIKeyService *service.APIKeyService
	Dev           bool
}

// HandleGenerate handles POST /api/keys/generate
//
//	@Summary		Mint a new API key
//	@Description	The full secret appears in this response only; listings show a masked form.
//	@Tags			Keys
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		generateKeyRequest	true	"key name"
//	@Success		201		{object}	generateKeyResponse
//	@Failure		400		{object}	apierr.Error	"validation_error"
//	@Router			/api/keys/generate [post].
func (h *KeysHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidToken.WriteError(w)
		return
	}

	var req generateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrValidation.WriteError(w)
		return
	}

	key, err := h.APIKeyService.Generate(r.Context(), caller.ID, req.Name)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, generateKeyResponse{
		Message:   "API key generated successfully",
		APIKey:    key.Key,
		Name:      key.Name,
		CreatedAt: key.CreatedAt,
	})
}

// HandleList handles GET /api/keys
//
//	@Summary		List the caller's API keys
//	@Description	Key strings are masked; the full secret is never shown again.
//	@Tags			Keys
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	apiKeyItem
//	@Router			/api/keys [get].
func (h *KeysHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidToken.WriteError(w)
		return
	}

	keys, err := h.APIKeyService.List(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	items := make([]apiKeyItem, 0, len(keys))
	for _, k := range keys {
		items = append(items, apiKeyItem{
			Name:      k.Name,
			APIKey:    k.Masked(),
			CreatedAt: k.CreatedAt,
			Active:    k.Active,
			LastUsed:  k.LastUsed,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, items)
}

// HandleRevoke handles DELETE /api/keys/{apiKey}
//
//	@Summary		Revoke one of the caller's API keys
//	@Description	Idempotent; the record is deactivated, not deleted.
//	@Tags			Keys
//	@Produce		json
//	@Security		BearerAuth
//	@Param			apiKey	path		string	true	"full key secret"
//	@Success		200		{object}	statusResponse
//	@Failure		403		{object}	apierr.Error	"forbidden"
//	@Failure		404		{object}	apierr.Error	"not_found"
//	@Router			/api/keys/{apiKey} [delete].
func (h *KeysHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidToken.WriteError(w)
		return
	}

	secret := r.PathValue("apiKey")
	if err := h.APIKeyService.Revoke(r.Context(), caller.ID, secret); err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusResponse{
		Message: "API key revoked successfully",
	})
}
