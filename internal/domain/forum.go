package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrCredentialsRejected is returned when the forum refuses a username and
// password pair.
var ErrCredentialsRejected = errors.New("credentials rejected")

// UpstreamError reports that a call to the forum platform could not complete.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("forum %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Credentials is what the forum issues for a verified login.
type Credentials struct {
	Token  string
	UserID int64
}

// Profile holds the extended attributes shown for a logged-in user.
type Profile struct {
	AvatarURL string
	Groups    []Group
}

// ProfileResult is the outcome of a profile lookup. When Fallback is set the
// Profile is empty and Err records why the lookup failed.
type ProfileResult struct {
	Profile  Profile
	Fallback bool
	Err      error
}

// CredentialVerifier checks a username and password against the forum.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (Credentials, error)
}

// ProfileFetcher loads profile details for a verified user. It never fails;
// problems are reported through ProfileResult.Fallback.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID int64, token string) ProfileResult
}
