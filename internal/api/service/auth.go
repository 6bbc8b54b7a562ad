package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyanix-ai/cyanix/internal/api/domain"
	"github.com/cyanix-ai/cyanix/internal/api/store"
	"github.com/cyanix-ai/cyanix/pkg/cryptox"
	"github.com/cyanix-ai/cyanix/pkg/idx"
	"github.com/cyanix-ai/cyanix/pkg/jwtx"
	"github.com/cyanix-ai/cyanix/pkg/slogx"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// AuthService owns registration, login and profile management. Session
// tokens it issues are self-contained; nothing here keeps per-token state.
type AuthService struct {
	Store    store.Store
	Signer   *jwtx.HS256Signer
	Issuer   string
	TokenTTL time.Duration
}

// Register creates a new account and returns it together with a freshly
// issued session token. The uniqueness check and the insert run in one
// transaction so concurrent registrations cannot both pass the check.
func (s *AuthService) Register(
	ctx context.Context,
	username, email, password string,
) (domain.User, string, error) {
	l := slogx.FromContext(ctx)

	if username == "" || email == "" || password == "" {
		return domain.User{}, "", fmt.Errorf(
			"%w: username, email, and password are required", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, "", fmt.Errorf(
			"%w: password must be at least %d characters long", ErrValidation, MinPasswordLength)
	}

	// Hash before opening the transaction: argon2 is deliberately expensive
	// and must not hold a write transaction open.
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		count, err := tx.Users().CountByUsernameOrEmail(ctx, username, email, "")
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateIdentity
		}
		return tx.Users().CreateUser(ctx, user)
	})
	if err != nil {
		// The UNIQUE constraints catch anything the pre-check raced past.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, "", ErrDuplicateIdentity
		}
		return domain.User{}, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return domain.User{}, "", err
	}

	l.Info("user registered", "user_id", user.ID, "username", username)
	return user, token, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password collapse into the same error; the active flag is checked only
// after a successful password match, so a deactivated account with the
// correct password is reported as inactive rather than as bad credentials.
func (s *AuthService) Login(
	ctx context.Context,
	email, password string,
) (domain.User, string, error) {
	l := slogx.FromContext(ctx)

	if email == "" || password == "" {
		return domain.User{}, "", fmt.Errorf(
			"%w: email and password are required", ErrValidation)
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("verify password: %w", err)
	}

	if !user.Active {
		return domain.User{}, "", ErrAccountInactive
	}

	token, err := s.issueToken(user)
	if err != nil {
		return domain.User{}, "", err
	}

	l.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// Profile returns the caller's own user record.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateProfile applies a partial update of username, email and password.
// Empty fields are left unchanged. Unlike registration's original
// counterpart, the new username/email are re-checked for uniqueness against
// every other user, inside the same transaction as the write.
func (s *AuthService) UpdateProfile(
	ctx context.Context,
	userID string,
	username, email, password string,
) (domain.User, error) {
	l := slogx.FromContext(ctx)

	var newHash string
	if password != "" {
		if len(password) < MinPasswordLength {
			return domain.User{}, fmt.Errorf(
				"%w: password must be at least %d characters long", ErrValidation, MinPasswordLength)
		}
		hash, err := cryptox.HashPassword(password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		newHash = hash
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		if username != "" {
			user.Username = username
		}
		if email != "" {
			user.Email = email
		}
		if newHash != "" {
			user.PasswordHash = newHash
		}

		count, err := tx.Users().CountByUsernameOrEmail(ctx, user.Username, user.Email, user.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateIdentity
		}

		user.UpdatedAt = time.Now().UTC()
		if err := tx.Users().UpdateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateIdentity
			}
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("profile updated", "user_id", userID)
	return updated, nil
}

// Deactivate soft-deactivates the caller's account. The record is kept;
// subsequent logins fail with ErrAccountInactive. Outstanding session
// tokens remain valid until expiry since they are stateless.
func (s *AuthService) Deactivate(ctx context.Context, userID string) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		user.Active = false
		user.UpdatedAt = time.Now().UTC()
		return tx.Users().UpdateUser(ctx, user)
	})
	if err != nil {
		return err
	}

	l.Info("account deactivated", "user_id", userID)
	return nil
}

func (s *AuthService) issueToken(user domain.User) (string, error) {
	ttl := s.TokenTTL
	if ttl == 0 {
		ttl = jwtx.DefaultSessionTokenTTL
	}

	claims := jwtx.NewSessionClaims(
		user.ID, user.Username, user.Email,
		s.Issuer, ttl, time.Now().UTC(),
	)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}
