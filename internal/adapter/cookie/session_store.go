// Package cookie implements a client-side session store: the whole session
// is sealed with secretbox and travels in the cookie value.
package cookie

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"guestbook/internal/domain"

	"golang.org/x/crypto/nacl/secretbox"
)

// KeySize is the required key length in bytes.
const KeySize = 32

const nonceSize = 24

// MaxHandleSize is the largest handle Save will produce; browsers drop
// cookies much beyond 4KB.
const MaxHandleSize = 3800

// SessionStore seals sessions into opaque handles. Deleted sessions are
// remembered by ID until they would have expired, so a copied cookie stops
// working after logout. Revocations are kept in process memory.
type SessionStore struct {
	key [KeySize]byte
	now func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // session ID -> ExpiresAt
}

var _ domain.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a store sealing with key.
func NewSessionStore(key []byte) (*SessionStore, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("cookie session key must be %d bytes, got %d", KeySize, len(key))
	}
	s := &SessionStore{now: time.Now, revoked: map[string]time.Time{}}
	copy(s.key[:], key)
	return s, nil
}

// RandomKey returns a fresh key. Sessions sealed with it do not survive a
// restart.
func RandomKey() ([]byte, error) {
	k := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		return nil, err
	}
	return k, nil
}

// Save seals the session and returns the encoded box.
func (s *SessionStore) Save(ctx context.Context, sess domain.Session) (string, error) {
	plain, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], plain, &nonce, &s.key)

	handle := base64.RawURLEncoding.EncodeToString(box)
	if len(handle) > MaxHandleSize {
		return "", errors.New("session too large for a cookie")
	}
	return handle, nil
}

// Load opens a sealed handle. Tampered, foreign, expired or revoked handles
// are reported as domain.ErrSessionNotFound.
func (s *SessionStore) Load(ctx context.Context, handle string) (domain.Session, error) {
	sess, err := s.open(handle)
	if err != nil {
		return domain.Session{}, err
	}
	if s.isRevoked(sess.ID) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionStore) open(handle string) (domain.Session, error) {
	box, err := base64.RawURLEncoding.DecodeString(handle)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	var sess domain.Session
	if err := json.Unmarshal(plain, &sess); err != nil {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Delete revokes the session sealed in handle. Handles that do not open are
// ignored.
func (s *SessionStore) Delete(ctx context.Context, handle string) error {
	sess, err := s.open(handle)
	if err != nil || sess.ID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteExpired(s.now())
	s.revoked[sess.ID] = sess.ExpiresAt
	return nil
}

func (s *SessionStore) isRevoked(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}

// deleteExpired drops revocations whose session can no longer be loaded
// anyway. Sessions without an expiry stay revoked. Callers hold s.mu.
func (s *SessionStore) deleteExpired(now time.Time) {
	for id, exp := range s.revoked {
		if !exp.IsZero() && !now.Before(exp) {
			delete(s.revoked, id)
		}
	}
}
