package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyanix-ai/cyanix/internal/api/domain"
	"github.com/cyanix-ai/cyanix/internal/api/store"
	"github.com/cyanix-ai/cyanix/pkg/cryptox"
	"github.com/cyanix-ai/cyanix/pkg/slogx"
)

// APIKeyService manages long-lived API keys. Unlike session tokens these
// require a store lookup on every use, which is what makes revocation
// possible without any expiry.
type APIKeyService struct {
	Store store.Store
}

// Generate mints a new API key bound to the caller. The returned record
// carries the full secret; it is shown to the caller exactly once and only
// a masked form is available afterwards.
func (s *APIKeyService) Generate(
	ctx context.Context,
	userID, name string,
) (domain.APIKey, error) {
	l := slogx.FromContext(ctx)

	if name == "" {
		return domain.APIKey{}, fmt.Errorf("%w: key name is required", ErrValidation)
	}

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("generate key secret: %w", err)
	}

	key := domain.APIKey{
		Key:       domain.APIKeySecretPrefix + secret,
		UserID:    userID,
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.Store.APIKeys().CreateAPIKey(ctx, key); err != nil {
		return domain.APIKey{}, err
	}

	l.Info("api key generated", "user_id", userID, "name", name)
	return key, nil
}

// Authenticate resolves a key secret to its owning user. Unknown keys,
// revoked keys and keys belonging to deactivated accounts all fail the same
// way so a probing caller learns nothing about which case they hit. On
// success the key's last-used timestamp is updated.
func (s *APIKeyService) Authenticate(ctx context.Context, secret string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	key, err := s.Store.APIKeys().GetAPIKey(ctx, secret)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidAPIKey
		}
		return domain.User{}, err
	}
	if !key.Active {
		return domain.User{}, ErrInvalidAPIKey
	}

	user, err := s.Store.Users().GetUserByID(ctx, key.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidAPIKey
		}
		return domain.User{}, err
	}
	if !user.Active {
		return domain.User{}, ErrInvalidAPIKey
	}

	if err := s.Store.APIKeys().TouchAPIKey(ctx, key.Key, time.Now().UTC()); err != nil {
		// Authentication already succeeded; losing a last-used update is
		// not worth failing the request over.
		l.Warn("failed to update api key last_used", "err", err)
	}

	return user, nil
}

// List returns all of the caller's keys, newest first. Callers must mask
// the key strings before exposing them.
func (s *APIKeyService) List(ctx context.Context, userID string) ([]domain.APIKey, error) {
	return s.Store.APIKeys().ListAPIKeysByUser(ctx, userID)
}

// Revoke deactivates one of the caller's keys. The check is ownership, not
// current activation state, so revoking an already-revoked key succeeds
// again. The record is never deleted.
func (s *APIKeyService) Revoke(ctx context.Context, userID, secret string) error {
	l := slogx.FromContext(ctx)

	key, err := s.Store.APIKeys().GetAPIKey(ctx, secret)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if key.UserID != userID {
		l.Warn("attempted to revoke another user's api key", "user_id", userID)
		return ErrForbidden
	}

	if err := s.Store.APIKeys().RevokeAPIKey(ctx, key.Key); err != nil {
		return err
	}

	l.Info("api key revoked", "user_id", userID, "name", key.Name)
	return nil
}
