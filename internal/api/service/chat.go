package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyanix-ai/cyanix/internal/api/domain"
	"github.com/cyanix-ai/cyanix/internal/api/store"
	"github.com/cyanix-ai/cyanix/pkg/idx"
	"github.com/cyanix-ai/cyanix/pkg/slogx"
)

// ChatService manages chat sessions and their message logs. Every operation
// on an existing session goes through the same ownership guard: load by id,
// NotFound if absent, Forbidden if the owner is not the caller. A caller can
// never observe or mutate another caller's session.
type ChatService struct {
	Store store.Store
}

// CreateSession creates an empty session owned by the caller. A blank title
// defaults to one derived from the creation time.
func (s *ChatService) CreateSession(
	ctx context.Context,
	userID, title string,
) (domain.ChatSession, error) {
	l := slogx.FromContext(ctx)

	now := time.Now().UTC()
	if title == "" {
		title = "Chat " + now.Format("2006-01-02 15:04:05")
	}

	session := domain.ChatSession{
		ID:        idx.New().String(),
		UserID:    userID,
		Title:     title,
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.ChatSessions().CreateSession(ctx, session); err != nil {
		return domain.ChatSession{}, err
	}

	l.Info("chat session created", "session_id", session.ID, "user_id", userID)
	return session, nil
}

// ListSessions returns summaries of the caller's sessions. Filtering by
// owner happens at the query level, so other users' sessions are simply
// absent rather than Forbidden.
func (s *ChatService) ListSessions(
	ctx context.Context,
	userID string,
) ([]domain.ChatSessionSummary, error) {
	return s.Store.ChatSessions().ListSessionsByOwner(ctx, userID)
}

// GetSession returns the full session including its ordered message log.
func (s *ChatService) GetSession(
	ctx context.Context,
	userID, sessionID string,
) (domain.ChatSession, error) {
	session, err := ownedSession(ctx, s.Store, userID, sessionID)
	if err != nil {
		return domain.ChatSession{}, err
	}

	msgs, err := s.Store.Messages().ListBySession(ctx, sessionID)
	if err != nil {
		return domain.ChatSession{}, err
	}
	session.Messages = msgs
	return session, nil
}

// AppendMessage appends one immutable message to a session the caller owns.
// Input validation happens before the existence and ownership checks. The
// insert and the session's updated_at bump are one transaction.
func (s *ChatService) AppendMessage(
	ctx context.Context,
	userID, sessionID string,
	role domain.Role,
	content string,
) (domain.Message, error) {
	l := slogx.FromContext(ctx)

	if role == "" || content == "" {
		return domain.Message{}, fmt.Errorf("%w: role and content are required", ErrValidation)
	}
	if !role.Valid() {
		return domain.Message{}, fmt.Errorf(
			"%w: role must be either %q or %q", ErrValidation, domain.RoleUser, domain.RoleAssistant)
	}

	now := time.Now().UTC()
	message := domain.Message{
		ID:        idx.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := ownedSession(ctx, tx, userID, sessionID); err != nil {
			return err
		}
		if err := tx.Messages().AppendMessage(ctx, message); err != nil {
			return err
		}
		return tx.ChatSessions().TouchSession(ctx, sessionID, now)
	})
	if err != nil {
		return domain.Message{}, err
	}

	l.Info("message appended", "session_id", sessionID, "role", role)
	return message, nil
}

// DeleteSession hard-deletes a session the caller owns, messages included.
// Sessions are ephemeral content, so unlike keys and accounts they are
// erased outright rather than deactivated.
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := ownedSession(ctx, tx, userID, sessionID); err != nil {
			return err
		}
		return tx.ChatSessions().DeleteSession(ctx, sessionID)
	})
	if err != nil {
		return err
	}

	l.Info("chat session deleted", "session_id", sessionID, "user_id", userID)
	return nil
}

// ClearMessages resets a session's message list to empty, keeping the
// session record itself and bumping its updated_at.
func (s *ChatService) ClearMessages(ctx context.Context, userID, sessionID string) error {
	l := slogx.FromContext(ctx)

	now := time.Now().UTC()
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := ownedSession(ctx, tx, userID, sessionID); err != nil {
			return err
		}
		if err := tx.Messages().ClearBySession(ctx, sessionID); err != nil {
			return err
		}
		return tx.ChatSessions().TouchSession(ctx, sessionID, now)
	})
	if err != nil {
		return err
	}

	l.Info("chat messages cleared", "session_id", sessionID, "user_id", userID)
	return nil
}

// ownedSession is the ownership guard: NotFound before Forbidden, so a
// caller probing random ids cannot distinguish "absent" from "not yours"
// by existence alone, but an existing foreign session is always Forbidden.
func ownedSession(
	ctx context.Context,
	st store.Store,
	userID, sessionID string,
) (domain.ChatSession, error) {
	session, err := st.ChatSessions().GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ChatSession{}, ErrNotFound
		}
		return domain.ChatSession{}, err
	}
	if session.UserID != userID {
		return domain.ChatSession{}, ErrForbidden
	}
	return session, nil
}
