// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by a SessionStore when the handle does not
// resolve to a live session.
var ErrSessionNotFound = errors.New("session not found")

// Group is a forum group membership shown next to the user's name.
type Group struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon,omitempty"`
}

// Session is a snapshot of the visitor's identity. The zero value is an
// anonymous visitor.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Groups    []Group   `json:"groups,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticated reports whether the session carries a verified forum identity.
func (s Session) Authenticated() bool {
	return s.UserID > 0 && s.Token != ""
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Clone returns a copy that shares no mutable state with s.
func (s Session) Clone() Session {
	if s.Groups != nil {
		s.Groups = append([]Group(nil), s.Groups...)
	}
	return s
}

// SessionStore is the port for session persistence. Save returns the handle
// the browser presents on later requests; for server-side stores that is the
// session ID, for client-side stores it is the encoded session itself.
type SessionStore interface {
	Save(ctx context.Context, s Session) (string, error)
	Load(ctx context.Context, handle string) (Session, error)
	Delete(ctx context.Context, handle string) error
}
