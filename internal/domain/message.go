package domain

import (
	"context"
	"time"
)

// Message is a single guestbook entry. Author name and avatar are copied at
// post time and never updated.
type Message struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageRepository is the port for guestbook persistence. Messages are
// append-only.
type MessageRepository interface {
	AppendMessage(ctx context.Context, userID int64, username, avatarURL, content string) (int64, error)
	ListRecentMessages(ctx context.Context) ([]Message, error)
}
