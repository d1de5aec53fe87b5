// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"guestbook/internal/domain"
	"guestbook/internal/logging"
)

var (
	// ErrMissingCredentials indicates that the username or password was empty.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrInvalidCredentials indicates that the forum rejected the username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthService drives the session lifecycle: forum login, profile enrichment
// and logout.
type AuthService struct {
	verifier domain.CredentialVerifier
	profiles domain.ProfileFetcher
	sessions domain.SessionStore
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates a new authentication service. Sessions live for ttl.
func NewAuthService(verifier domain.CredentialVerifier, profiles domain.ProfileFetcher, sessions domain.SessionStore, ttl time.Duration) *AuthService {
	return &AuthService{
		verifier: verifier,
		profiles: profiles,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login verifies the credentials with the forum, enriches the identity with
// profile details and stores a new session. It returns the stored session
// and the handle to hand back to the browser.
//
// A rejected login returns ErrInvalidCredentials; a forum that cannot be
// reached returns a *domain.UpstreamError. Profile lookup failures do not
// fail the login.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Session, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Session{}, "", ErrMissingCredentials
	}

	creds, err := s.verifier.VerifyCredentials(ctx, username, password)
	if errors.Is(err, domain.ErrCredentialsRejected) {
		return domain.Session{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, "", err
	}

	profile := s.profiles.FetchProfile(ctx, creds.UserID, creds.Token)
	if profile.Fallback {
		logging.FromContext(ctx).Warn("profile lookup failed, continuing without profile",
			"user_id", creds.UserID, "err", profile.Err)
	}

	id, err := generateToken()
	if err != nil {
		return domain.Session{}, "", err
	}

	now := s.now().UTC()
	sess := domain.Session{
		ID:        id,
		UserID:    creds.UserID,
		Username:  username,
		Token:     creds.Token,
		AvatarURL: profile.Profile.AvatarURL,
		Groups:    profile.Profile.Groups,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	handle, err := s.sessions.Save(ctx, sess)
	if err != nil {
		return domain.Session{}, "", err
	}
	return sess, handle, nil
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	return s.sessions.Delete(ctx, handle)
}

// Current resolves a session handle. Unknown or expired handles resolve to
// the anonymous session without error.
func (s *AuthService) Current(ctx context.Context, handle string) (domain.Session, error) {
	if handle == "" {
		return domain.Session{}, nil
	}
	sess, err := s.sessions.Load(ctx, handle)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, err
	}
	if sess.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, handle)
		return domain.Session{}, nil
	}
	return sess, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
