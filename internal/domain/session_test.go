package domain_test

import (
	"testing"
	"time"

	"guestbook/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSessionAuthenticated(t *testing.T) {
	tests := []struct {
		name string
		s    domain.Session
		want bool
	}{
		{"zero value", domain.Session{}, false},
		{"id only", domain.Session{ID: "abc"}, false},
		{"no token", domain.Session{UserID: 7, Username: "alice"}, false},
		{"verified", domain.Session{UserID: 7, Username: "alice", Token: "T1"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.s.Authenticated())
		})
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	assert.False(t, (domain.Session{}).Expired(now), "no expiry never expires")
	assert.True(t, (domain.Session{ExpiresAt: now}).Expired(now), "expiring at now is expired")
	assert.False(t, (domain.Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
}

func TestSessionCloneDetachesGroups(t *testing.T) {
	orig := domain.Session{Groups: []domain.Group{{Name: "Member", Color: "#ccc"}}}
	c := orig.Clone()
	c.Groups[0].Name = "Admin"

	assert.Equal(t, "Member", orig.Groups[0].Name)
}
