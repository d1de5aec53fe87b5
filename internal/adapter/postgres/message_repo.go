package postgres

import (
	"context"
	"database/sql"

	"guestbook/internal/domain"
)

var _ domain.MessageRepository = (*DB)(nil)

// AppendMessage inserts a message; id and timestamp come from the table defaults.
func (d *DB) AppendMessage(ctx context.Context, userID int64, username, avatarURL, content string) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO messages(user_id, username, avatar_url, content) VALUES($1, $2, $3, $4) RETURNING id;`,
		userID, username, nullString(avatarURL), content,
	).Scan(&id)
	return id, err
}

// ListRecentMessages returns all messages, newest first.
func (d *DB) ListRecentMessages(ctx context.Context) ([]domain.Message, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, user_id, username, avatar_url, content, "timestamp" FROM messages ORDER BY "timestamp" DESC, id DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Message, 0)
	for rows.Next() {
		var (
			m      domain.Message
			avatar sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Username, &avatar, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.AvatarURL = avatar.String
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
