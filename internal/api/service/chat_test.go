package service

import (
	"context"
	"testing"
	"time"

	"github.com/cyanix-ai/cyanix/internal/api/domain"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st)
	chat := &ChatService{Store: st}

	user, _ := registerUser(t, auth, "alice", "alice@example.com", "password123")

	t.Run("explicit title", func(t *testing.T) {
		session, err := chat.CreateSession(ctx, user.ID, "My Chat")
		require.NoError(t, err)
		require.Equal(t, "My Chat", session.Title)
		require.Equal(t, user.ID, session.UserID)
		require.Empty(t, session.Messages)
	})

	t.Run("blank title defaults to a timestamped one", func(t *testing.T) {
		session, err := chat.CreateSession(ctx, user.ID, "")
		require.NoError(t, err)
		require.Regexp(t, `^Chat \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, session.Title)
	})
}

func TestAppendMessage(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st)
	chat := &ChatService{Store: st}

	user, _ := registerUser(t, auth, "alice", "alice@example.com", "password123")
	session, err := chat.CreateSession(ctx, user.ID, "chat")
	require.NoError(t, err)

	t.Run("appends in order", func(t *testing.T) {
		first, err := chat.AppendMessage(ctx, user.ID, session.ID, domain.RoleUser, "hello")
		require.NoError(t, err)
		second, err := chat.AppendMessage(ctx, user.ID, session.ID, domain.RoleAssistant, "hi there")
		require.NoError(t, err)

		got, err := chat.GetSession(ctx, user.ID, session.ID)
		require.NoError(t, err)
		require.Len(t, got.Messages, 2)
		require.Equal(t, first.ID, got.Messages[0].ID)
		require.Equal(t, second.ID, got.Messages[1].ID)
		require.Equal(t, domain.RoleUser, got.Messages[0].Role)
		require.Equal(t, "hi there", got.Messages[1].Content)
	})

	t.Run("bumps the session's updated_at", func(t *testing.T) {
		before, err := chat.GetSession(ctx, user.ID, session.ID)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		_, err = chat.AppendMessage(ctx, user.ID, session.ID, domain.RoleUser, "again")
		require.NoError(t, err)

		after, err := chat.GetSession(ctx, user.ID, session.ID)
		require.NoError(t, err)
		require.True(t, after.UpdatedAt.After(before.UpdatedAt))
	})

	t.Run("validates input before looking at the session", func(t *testing.T) {
		// Bad role on a nonexistent session is a validation error, not a 404.
		_, err := chat.AppendMessage(ctx, user.ID, "missing-session", "system", "hello")
		require.ErrorIs(t, err, ErrValidation)

		_, err = chat.AppendMessage(ctx, user.ID, session.ID, domain.RoleUser, "")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := chat.AppendMessage(ctx, user.ID, "missing-session", domain.RoleUser, "hello")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSessionOwnership(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st)
	chat := &ChatService{Store: st}

	alice, _ := registerUser(t, auth, "alice", "alice@example.com", "password123")
	bob, _ := registerUser(t, auth, "bob", "bob@example.com", "password123")

	session, err := chat.CreateSession(ctx, alice.ID, "alice's chat")
	require.NoError(t, err)

	t.Run("foreign session is forbidden, not absent", func(t *testing.T) {
		_, err := chat.GetSession(ctx, bob.ID, session.ID)
		require.ErrorIs(t, err, ErrForbidden)

		_, err = chat.AppendMessage(ctx, bob.ID, session.ID, domain.RoleUser, "hi")
		require.ErrorIs(t, err, ErrForbidden)

		require.ErrorIs(t, chat.DeleteSession(ctx, bob.ID, session.ID), ErrForbidden)
		require.ErrorIs(t, chat.ClearMessages(ctx, bob.ID, session.ID), ErrForbidden)
	})

	t.Run("listing only shows the caller's sessions", func(t *testing.T) {
		summaries, err := chat.ListSessions(ctx, bob.ID)
		require.NoError(t, err)
		require.Empty(t, summaries)

		summaries, err = chat.ListSessions(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		require.Equal(t, session.ID, summaries[0].ID)
	})

	t.Run("nothing leaked to the would-be intruder", func(t *testing.T) {
		// Alice's session is untouched by any of Bob's attempts.
		got, err := chat.GetSession(ctx, alice.ID, session.ID)
		require.NoError(t, err)
		require.Empty(t, got.Messages)
	})
}

func TestListSessionsMessageCount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st)
	chat := &ChatService{Store: st}

	user, _ := registerUser(t, auth, "alice", "alice@example.com", "password123")

	empty, err := chat.CreateSession(ctx, user.ID, "empty")
	require.NoError(t, err)
	busy, err := chat.CreateSession(ctx, user.ID, "busy")
	require.NoError(t, err)

	for range 3 {
		_, err := chat.AppendMessage(ctx, user.ID, busy.ID, domain.RoleUser, "ping")
		require.NoError(t, err)
	}

	summaries, err := chat.ListSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	counts := map[string]int{}
	for _, s := range summaries {
		counts[s.ID] = s.MessageCount
	}
	require.Equal(t, 0, counts[empty.ID])
	require.Equal(t, 3, counts[busy.ID])
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st)
	chat := &ChatService{Store: st}

	user, _ := registerUser(t, auth, "alice", "alice@example.com", "password123")
	session, err := chat.CreateSession(ctx, user.ID, "chat")
	require.NoError(t, err)
	_, err = chat.AppendMessage(ctx, user.ID, session.ID, domain.RoleUser, "hello")
	require.NoError(t, err)

	require.NoError(t, chat.DeleteSession(ctx, user.ID, session.ID))

	_, err = chat.GetSession(ctx, user.ID, session.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// Deletion is a hard delete, so repeating it is a 404.
	require.ErrorIs(t, chat.DeleteSession(ctx, user.ID, session.ID), ErrNotFound)
}

func TestClearMessages(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st)
	chat := &ChatService{Store: st}

	user, _ := registerUser(t, auth, "alice", "alice@example.com", "password123")
	session, err := chat.CreateSession(ctx, user.ID, "chat")
	require.NoError(t, err)

	for range 2 {
		_, err := chat.AppendMessage(ctx, user.ID, session.ID, domain.RoleUser, "hello")
		require.NoError(t, err)
	}

	require.NoError(t, chat.ClearMessages(ctx, user.ID, session.ID))

	// The session survives with an empty log.
	got, err := chat.GetSession(ctx, user.ID, session.ID)
	require.NoError(t, err)
	require.Empty(t, got.Messages)

	// And accepts new messages afterwards.
	_, err = chat.AppendMessage(ctx, user.ID, session.ID, domain.RoleAssistant, "fresh start")
	require.NoError(t, err)
}
