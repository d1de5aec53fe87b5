package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"guestbook/internal/domain"
)

var (
	// ErrNotAuthenticated indicates that the action requires a logged-in user.
	ErrNotAuthenticated = errors.New("login required")
	// ErrEmptyMessage indicates that the message has no content after trimming.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrMessageTooLong indicates that the message exceeds the configured length.
	ErrMessageTooLong = errors.New("message is too long")
	// ErrInvalidEncoding indicates that the message is not valid UTF-8.
	ErrInvalidEncoding = errors.New("message is not valid UTF-8")
)

// GuestbookService encapsulates guestbook use cases.
type GuestbookService struct {
	repo   domain.MessageRepository
	maxLen int
}

// NewGuestbookService creates a GuestbookService backed by the given
// repository. Messages longer than maxLen runes are refused.
func NewGuestbookService(repo domain.MessageRepository, maxLen int) *GuestbookService {
	return &GuestbookService{repo: repo, maxLen: maxLen}
}

// Post validates and stores a message written by the session's user.
func (s *GuestbookService) Post(ctx context.Context, sess domain.Session, content string) (int64, error) {
	if !sess.Authenticated() {
		return 0, ErrNotAuthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, ErrEmptyMessage
	}
	if !utf8.ValidString(content) {
		return 0, ErrInvalidEncoding
	}
	if s.maxLen > 0 && utf8.RuneCountInString(content) > s.maxLen {
		return 0, ErrMessageTooLong
	}

	id, err := s.repo.AppendMessage(ctx, sess.UserID, sess.Username, sess.AvatarURL, content)
	if err != nil {
		return 0, fmt.Errorf("append message: %w", err)
	}
	return id, nil
}

// ListRecent returns every message, newest first.
func (s *GuestbookService) ListRecent(ctx context.Context) ([]domain.Message, error) {
	msgs, err := s.repo.ListRecentMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}
