package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/cyanix-ai/cyanix/internal/api/domain"
)

type apiKeysRepo struct {
	q queryer
}

const apiKeyColumns = `key, user_id, name, active, created_at, last_used`

func scanAPIKey(row interface{ Scan(...any) error }) (domain.APIKey, error) {
	var (
		k        domain.APIKey
		lastUsed sql.NullTime
	)
	err := row.Scan(
		&k.Key,
		&k.UserID,
		&k.Name,
		&k.Active,
		&k.CreatedAt,
		&lastUsed,
	)
	if err != nil {
		return domain.APIKey{}, mapNotFound(err)
	}
	k.LastUsed = mapNullTimePtr(lastUsed)
	return k, nil
}

func (r *apiKeysRepo) CreateAPIKey(ctx context.Context, k domain.APIKey) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO api_keys (key, user_id, name, active, created_at, last_used)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		k.Key, k.UserID, k.Name, k.Active, k.CreatedAt, mapOptionalTime(k.LastUsed),
	)
	return mapConstraint(err)
}

func (r *apiKeysRepo) GetAPIKey(ctx context.Context, key string) (domain.APIKey, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key = ?`, key)
	return scanAPIKey(row)
}

func (r *apiKeysRepo) ListAPIKeysByUser(ctx context.Context, userID string) ([]domain.APIKey, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE user_id = ? ORDER BY created_at DESC, key`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []domain.APIKey{}
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *apiKeysRepo) RevokeAPIKey(ctx context.Context, key string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE api_keys SET active = 0 WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *apiKeysRepo) TouchAPIKey(ctx context.Context, key string, usedAt time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE key = ?`, usedAt, key)
	return err
}
