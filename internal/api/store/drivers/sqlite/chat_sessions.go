package sqlite

import (
	"context"
	"time"

	"github.com/cyanix-ai/cyanix/internal/api/domain"
)

type chatSessionsRepo struct {
	q queryer
}

func (r *chatSessionsRepo) CreateSession(ctx context.Context, s domain.ChatSession) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, user_id, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Title, s.CreatedAt, s.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *chatSessionsRepo) GetSession(ctx context.Context, id string) (domain.ChatSession, error) {
	var s domain.ChatSession
	err := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM chat_sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.ChatSession{}, mapNotFound(err)
	}
	return s, nil
}

func (r *chatSessionsRepo) ListSessionsByOwner(
	ctx context.Context,
	userID string,
) ([]domain.ChatSessionSummary, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT s.id, s.title, COUNT(m.id), s.created_at, s.updated_at
		 FROM chat_sessions s
		 LEFT JOIN messages m ON m.session_id = s.id
		 WHERE s.user_id = ?
		 GROUP BY s.id
		 ORDER BY s.created_at DESC, s.id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []domain.ChatSessionSummary{}
	for rows.Next() {
		var s domain.ChatSessionSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.MessageCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *chatSessionsRepo) TouchSession(ctx context.Context, id string, updatedAt time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, updatedAt, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *chatSessionsRepo) DeleteSession(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM chat_sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
