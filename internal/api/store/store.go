package store

import (
	"context"
	"errors"
	"time"

	"github.com/cyanix-ai/cyanix/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, and
// later a real server database) implement this. It exposes sub-repositories
// to keep concerns tidy and testable.
type Store interface {
	Users() Users
	APIKeys() APIKeys
	ChatSessions() ChatSessions
	Messages() Messages

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction. If fn returns an
	// error the transaction is rolled back, otherwise it is committed. This
	// is the recommended way to run multi-step operations that must be
	// atomic (registration uniqueness check + insert, message append +
	// session touch).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login. Matching is case-sensitive exact,
	// same for usernames.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser writes username, email, password_hash, active and
	// updated_at for an existing user.
	UpdateUser(ctx context.Context, u domain.User) error

	// CountByUsernameOrEmail counts users sharing the username or email,
	// excluding excludeID (empty string excludes nothing). Used for the
	// uniqueness check at registration and profile update.
	CountByUsernameOrEmail(ctx context.Context, username, email, excludeID string) (int64, error)
}

type APIKeys interface {
	// CreateAPIKey inserts a new key record. The key string is the primary key.
	CreateAPIKey(ctx context.Context, k domain.APIKey) error

	// GetAPIKey fetches a key record by its full secret string, regardless
	// of activation state.
	GetAPIKey(ctx context.Context, key string) (domain.APIKey, error)

	// ListAPIKeysByUser returns all keys owned by a user, newest first.
	ListAPIKeysByUser(ctx context.Context, userID string) ([]domain.APIKey, error)

	// RevokeAPIKey flips active to false. The record is never deleted.
	RevokeAPIKey(ctx context.Context, key string) error

	// TouchAPIKey records a successful authentication with the key.
	TouchAPIKey(ctx context.Context, key string, usedAt time.Time) error
}

type ChatSessions interface {
	// CreateSession inserts a new session with an empty message list.
	CreateSession(ctx context.Context, s domain.ChatSession) error

	// GetSession returns a session without its messages.
	GetSession(ctx context.Context, id string) (domain.ChatSession, error)

	// ListSessionsByOwner returns summaries (message counts, no bodies) of
	// all sessions owned by a user, newest first.
	ListSessionsByOwner(ctx context.Context, userID string) ([]domain.ChatSessionSummary, error)

	// TouchSession bumps updated_at after a mutation of the message list.
	TouchSession(ctx context.Context, id string, updatedAt time.Time) error

	// DeleteSession hard-deletes a session and, via cascade, its messages.
	DeleteSession(ctx context.Context, id string) error
}

type Messages interface {
	// AppendMessage inserts a message at the end of its session's log.
	AppendMessage(ctx context.Context, m domain.Message) error

	// ListBySession returns a session's messages in append order.
	ListBySession(ctx context.Context, sessionID string) ([]domain.Message, error)

	// ClearBySession deletes all messages of a session, keeping the session.
	ClearBySession(ctx context.Context, sessionID string) error
}
