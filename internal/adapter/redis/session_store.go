// Package redis implements the session store on Redis. Sessions expire with
// the key TTL, so nothing outlives its ExpiresAt.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guestbook/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "guestbook:session:"

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// SessionStore keeps sessions as JSON values under prefixed keys.
type SessionStore struct {
	rdb    goredis.Cmdable
	prefix string
	now    func() time.Time
}

var _ domain.SessionStore = (*SessionStore)(nil)

// NewSessionStore wraps a Redis client. An empty prefix uses DefaultPrefix.
func NewSessionStore(rdb goredis.Cmdable, prefix string) *SessionStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SessionStore{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *SessionStore) key(handle string) string {
	return s.prefix + handle
}

// Save writes the session with a TTL matching its expiry.
func (s *SessionStore) Save(ctx context.Context, sess domain.Session) (string, error) {
	if sess.ID == "" {
		return "", errors.New("session id is required")
	}
	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return "", errors.New("session already expired")
		}
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session: %w", err)
	}
	return sess.ID, nil
}

// Load reads the session for handle.
func (s *SessionStore) Load(ctx context.Context, handle string) (domain.Session, error) {
	data, err := s.rdb.Get(ctx, s.key(handle)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

// Delete removes the session for handle.
func (s *SessionStore) Delete(ctx context.Context, handle string) error {
	if err := s.rdb.Del(ctx, s.key(handle)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
