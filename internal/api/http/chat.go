package http

import (
	"encoding/json"
	"net/http"

	"github.com/cyanix-ai/cyanix/internal/api/domain"
	"github.com/cyanix-ai/cyanix/internal/api/service"
	"github.com/cyanix-ai/cyanix/pkg/apierr"
	"github.com/cyanix-ai/cyanix/pkg/httpx"
)

// ChatHandler serves the key-guarded chat session endpoints.
type ChatHandler struct {
	ChatService *service.ChatService
	Dev         bool
}

// HandleCreateSession handles POST /api/chat/sessions
//
//	@Summary		Create an empty chat session
//	@Description	A blank title defaults to one derived from the creation time.
//	@Tags			Chat
//	@Accept			json
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			request	body		createSessionRequest	false	"optional title"
//	@Success		201		{object}	createSessionResponse
//	@Router			/api/chat/sessions [post].
func (h *ChatHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidAPIKey.WriteError(w)
		return
	}

	var req createSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierr.ErrValidation.WriteError(w)
			return
		}
	}

	session, err := h.ChatService.CreateSession(r.Context(), caller.ID, req.Title)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, createSessionResponse{
		Message:   "Chat session created successfully",
		SessionID: session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
	})
}

// HandleListSessions handles GET /api/chat/sessions
//
//	@Summary		List the caller's chat sessions
//	@Description	Summaries only; message bodies are not included.
//	@Tags			Chat
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{array}	sessionSummaryItem
//	@Router			/api/chat/sessions [get].
func (h *ChatHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidAPIKey.WriteError(w)
		return
	}

	summaries, err := h.ChatService.ListSessions(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	items := make([]sessionSummaryItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, sessionSummaryItem{
			SessionID:    s.ID,
			Title:        s.Title,
			MessageCount: s.MessageCount,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, items)
}

// HandleGetSession handles GET /api/chat/sessions/{id}
//
//	@Summary		Fetch a session with its full message log
//	@Tags			Chat
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			id	path		string	true	"session id"
//	@Success		200	{object}	sessionDetailResponse
//	@Failure		403	{object}	apierr.Error	"forbidden"
//	@Failure		404	{object}	apierr.Error	"not_found"
//	@Router			/api/chat/sessions/{id} [get].
func (h *ChatHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidAPIKey.WriteError(w)
		return
	}

	session, err := h.ChatService.GetSession(r.Context(), caller.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	msgs := make([]messageItem, 0, len(session.Messages))
	for _, m := range session.Messages {
		msgs = append(msgs, messageItem{
			MessageID: m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, sessionDetailResponse{
		SessionID: session.ID,
		UserID:    session.UserID,
		Title:     session.Title,
		Messages:  msgs,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	})
}

// HandleAppendMessage handles POST /api/chat/sessions/{id}/messages
//
//	@Summary		Append a message to a session
//	@Description	Messages are immutable once appended; role must be user or assistant.
//	@Tags			Chat
//	@Accept			json
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			id		path		string					true	"session id"
//	@Param			request	body		appendMessageRequest	true	"role and content"
//	@Success		201		{object}	appendMessageResponse
//	@Failure		400		{object}	apierr.Error	"validation_error"
//	@Failure		403		{object}	apierr.Error	"forbidden"
//	@Failure		404		{object}	apierr.Error	"not_found"
//	@Router			/api/chat/sessions/{id}/messages [post].
func (h *ChatHandler) HandleAppendMessage(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidAPIKey.WriteError(w)
		return
	}

	var req appendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrValidation.WriteError(w)
		return
	}

	msg, err := h.ChatService.AppendMessage(
		r.Context(), caller.ID, r.PathValue("id"),
		domain.Role(req.Role), req.Content,
	)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, appendMessageResponse{
		Message:   "Message added successfully",
		MessageID: msg.ID,
		Timestamp: msg.CreatedAt,
	})
}

// HandleDeleteSession handles DELETE /api/chat/sessions/{id}
//
//	@Summary		Delete a session and its messages
//	@Tags			Chat
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			id	path		string	true	"session id"
//	@Success		200	{object}	statusResponse
//	@Failure		403	{object}	apierr.Error	"forbidden"
//	@Failure		404	{object}	apierr.Error	"not_found"
//	@Router			/api/chat/sessions/{id} [delete].
func (h *ChatHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidAPIKey.WriteError(w)
		return
	}

	if err := h.ChatService.DeleteSession(r.Context(), caller.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusResponse{
		Message: "Chat session deleted successfully",
	})
}

// HandleClearMessages handles DELETE /api/chat/sessions/{id}/messages
//
//	@Summary		Clear a session's message log
//	@Description	The session itself survives with an empty message list.
//	@Tags			Chat
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			id	path		string	true	"session id"
//	@Success		200	{object}	statusResponse
//	@Failure		403	{object}	apierr.Error	"forbidden"
//	@Failure		404	{object}	apierr.Error	"not_found"
//	@Router			/api/chat/sessions/{id}/messages [delete].
func (h *ChatHandler) HandleClearMessages(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.CallerFromContext(r.Context())
	if !ok {
		apierr.ErrInvalidAPIKey.WriteError(w)
		return
	}

	if err := h.ChatService.ClearMessages(r.Context(), caller.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusResponse{
		Message: "Chat history cleared successfully",
	})
}
