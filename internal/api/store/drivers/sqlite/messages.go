package sqlite

import (
	"context"

	"github.com/cyanix-ai/cyanix/internal/api/domain"
)

type messagesRepo struct {
	q queryer
}

func (r *messagesRepo) AppendMessage(ctx context.Context, m domain.Message) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, string(m.Role), m.Content, m.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *messagesRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.Message, error) {
	// Message ids are ULIDs, so ordering by id is append order.
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM messages WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []domain.Message{}
	for rows.Next() {
		var (
			m    domain.Message
			role string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *messagesRepo) ClearBySession(ctx context.Context, sessionID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM messages WHERE session_id = ?`, sessionID)
	return err
}
