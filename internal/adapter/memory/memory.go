// Package memory implements in-memory storage for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"guestbook/internal/domain"
)

// DB implements an in-memory guestbook storage.
type DB struct {
	mu        sync.Mutex
	messages  []domain.Message
	idCounter int64
	now       func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{now: time.Now}
}

// Ensure interfaces are met.
var _ domain.MessageRepository = (*DB)(nil)
var _ domain.SessionStore = (*SessionStore)(nil)

// --- MessageRepository ---

// AppendMessage stores a message and assigns its ID and timestamp.
func (db *DB) AppendMessage(ctx context.Context, userID int64, username, avatarURL, content string) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.idCounter++
	db.messages = append(db.messages, domain.Message{
		ID:        db.idCounter,
		UserID:    userID,
		Username:  username,
		AvatarURL: avatarURL,
		Content:   content,
		CreatedAt: db.now().UTC(),
	})
	return db.idCounter, nil
}

// ListRecentMessages returns all messages, newest first.
func (db *DB) ListRecentMessages(ctx context.Context) ([]domain.Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Message, len(db.messages))
	copy(result, db.messages)

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// --- SessionStore ---

// SessionStore keeps sessions in process memory keyed by session ID.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

// Save stores s under its ID and returns the ID as the handle.
func (r *SessionStore) Save(ctx context.Context, s domain.Session) (string, error) {
	if s.ID == "" {
		return "", errors.New("session id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deleteExpired(r.now())
	r.sessions[s.ID] = s.Clone()
	return s.ID, nil
}

// Load returns the session for handle. Expired sessions are dropped.
func (r *SessionStore) Load(ctx context.Context, handle string) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[handle]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if s.Expired(r.now()) {
		delete(r.sessions, handle)
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Delete deletes a session.
func (r *SessionStore) Delete(ctx context.Context, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, handle)
	return nil
}

// deleteExpired drops expired sessions. Callers hold r.mu.
func (r *SessionStore) deleteExpired(now time.Time) {
	for k, v := range r.sessions {
		if v.Expired(now) {
			delete(r.sessions, k)
		}
	}
}
