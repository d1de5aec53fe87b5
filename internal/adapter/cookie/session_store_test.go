package cookie

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"guestbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *SessionStore {
	t.Helper()
	s, err := NewSessionStore(bytes.Repeat([]byte{7}, KeySize))
	require.NoError(t, err)
	return s
}

func TestNewSessionStore_KeySize(t *testing.T) {
	_, err := NewSessionStore([]byte("short"))
	assert.Error(t, err)

	k, err := RandomKey()
	require.NoError(t, err)
	assert.Len(t, k, KeySize)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	sess := domain.Session{
		ID:        "abc",
		UserID:    7,
		Username:  "alice",
		Token:     "T1",
		AvatarURL: "http://x/a.png",
		Groups:    []domain.Group{{Name: "Member", Color: "#ccc"}},
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}

	handle, err := store.Save(ctx, sess)
	require.NoError(t, err)
	assert.NotContains(t, handle, "T1", "token must not be readable in the cookie")

	got, err := store.Load(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, sess.Username, got.Username)
	assert.Equal(t, sess.Token, got.Token)
	assert.Equal(t, sess.Groups, got.Groups)

	other, err := store.Save(ctx, sess)
	require.NoError(t, err)
	assert.NotEqual(t, handle, other, "each seal uses a fresh nonce")
}

func TestSessionStore_RejectsTampering(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	handle, err := store.Save(ctx, domain.Session{ID: "abc", UserID: 7, Token: "T1"})
	require.NoError(t, err)

	box, err := base64.RawURLEncoding.DecodeString(handle)
	require.NoError(t, err)
	box[len(box)-1] ^= 0xff
	tampered := base64.RawURLEncoding.EncodeToString(box)

	foreign, err := NewSessionStore(bytes.Repeat([]byte{9}, KeySize))
	require.NoError(t, err)

	for name, h := range map[string]string{
		"tampered":  tampered,
		"not b64":   "%%%",
		"too short": "AAAA",
		"empty":     "",
	} {
		_, err := store.Load(ctx, h)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, name)
	}

	_, err = foreign.Load(ctx, handle)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "sealed with another key")
}

func TestSessionStore_Expired(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	now := time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	handle, err := store.Save(ctx, domain.Session{ID: "abc", UserID: 7, Token: "T1", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = store.Load(ctx, handle)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_TooLarge(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(context.Background(), domain.Session{ID: "abc", Token: strings.Repeat("x", 4000)})
	assert.Error(t, err)
}

func TestSessionStore_DeleteRevokesHandle(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	now := time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := domain.Session{ID: "abc", UserID: 7, Token: "T1", ExpiresAt: now.Add(time.Hour)}
	handle, err := store.Save(ctx, sess)
	require.NoError(t, err)
	copied, err := store.Save(ctx, sess)
	require.NoError(t, err)

	other, err := store.Save(ctx, domain.Session{ID: "def", UserID: 8, Token: "T2", ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, handle))

	_, err = store.Load(ctx, handle)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = store.Load(ctx, copied)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "every seal of a deleted session is revoked")

	got, err := store.Load(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.UserID)

	assert.NoError(t, store.Delete(ctx, "garbage"))
}

func TestSessionStore_RevocationsArePurgedAfterExpiry(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	now := time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	short, err := store.Save(ctx, domain.Session{ID: "short", UserID: 7, Token: "T1", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)
	long, err := store.Save(ctx, domain.Session{ID: "long", UserID: 7, Token: "T1", ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, short))
	assert.Len(t, store.revoked, 1)

	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Delete(ctx, long))

	assert.Len(t, store.revoked, 1)
	assert.Contains(t, store.revoked, "long")
}
