// Package forum is the outbound adapter for the forum platform's REST API.
// It verifies credentials and loads profile details for verified users.
package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"guestbook/internal/domain"

	"golang.org/x/oauth2"
)

// DefaultGroupColor is used for groups that have no color configured.
const DefaultGroupColor = "#6c757d"

// maxErrorBody bounds how much of a rejected response is kept for display.
const maxErrorBody = 4 << 10

// RejectedError is returned when the token endpoint answers with anything
// other than 200. It matches domain.ErrCredentialsRejected.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("credentials rejected: status %d", e.StatusCode)
}

func (e *RejectedError) Unwrap() error { return domain.ErrCredentialsRejected }

// Client talks to a single forum installation.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each outbound call. Zero leaves calls bounded only by
// the caller's context and the transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Client for the forum rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var (
	_ domain.CredentialVerifier = (*Client)(nil)
	_ domain.ProfileFetcher     = (*Client)(nil)
)

type tokenRequest struct {
	Identification string `json:"identification"`
	Password       string `json:"password"`
}

type tokenResponse struct {
	Token  string     `json:"token"`
	UserID flexibleID `json:"userId"`
}

// VerifyCredentials exchanges a username (or email) and password for a
// forum token. It makes exactly one request.
func (c *Client) VerifyCredentials(ctx context.Context, username, password string) (domain.Credentials, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(tokenRequest{Identification: username, Password: password})
	if err != nil {
		return domain.Credentials{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/token", bytes.NewReader(body))
	if err != nil {
		return domain.Credentials{}, &domain.UpstreamError{Op: "verify", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Credentials{}, &domain.UpstreamError{Op: "verify", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.Credentials{}, &RejectedError{StatusCode: resp.StatusCode, Body: string(detail)}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return domain.Credentials{}, &domain.UpstreamError{Op: "verify", Err: fmt.Errorf("decode token response: %w", err)}
	}
	if tr.Token == "" || tr.UserID <= 0 {
		return domain.Credentials{}, &domain.UpstreamError{Op: "verify", Err: errors.New("token response missing token or userId")}
	}
	return domain.Credentials{Token: tr.Token, UserID: int64(tr.UserID)}, nil
}

type userDocument struct {
	Data struct {
		Attributes struct {
			AvatarURL *string `json:"avatarUrl"`
		} `json:"attributes"`
	} `json:"data"`
	Included []struct {
		Type       string `json:"type"`
		Attributes struct {
			NameSingular string  `json:"nameSingular"`
			Color        *string `json:"color"`
			Icon         *string `json:"icon"`
		} `json:"attributes"`
	} `json:"included"`
}

// FetchProfile loads avatar and group memberships for userID. Any failure
// yields a fallback result with an empty profile.
func (c *Client) FetchProfile(ctx context.Context, userID int64, token string) domain.ProfileResult {
	p, err := c.fetchProfile(ctx, userID, token)
	if err != nil {
		return domain.ProfileResult{Fallback: true, Err: err}
	}
	return domain.ProfileResult{Profile: p}
}

func (c *Client) fetchProfile(ctx context.Context, userID int64, token string) (domain.Profile, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/users/%d?include=groups", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Profile{}, err
	}
	req.Header.Set("Accept", "application/vnd.api+json")

	resp, err := c.tokenClient(token).Do(req)
	if err != nil {
		return domain.Profile{}, &domain.UpstreamError{Op: "profile", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return domain.Profile{}, fmt.Errorf("profile: unexpected status %d", resp.StatusCode)
	}

	var doc userDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return domain.Profile{}, fmt.Errorf("profile: decode: %w", err)
	}

	var p domain.Profile
	if doc.Data.Attributes.AvatarURL != nil {
		p.AvatarURL = *doc.Data.Attributes.AvatarURL
	}
	for _, inc := range doc.Included {
		if inc.Type != "groups" {
			continue
		}
		g := domain.Group{Name: inc.Attributes.NameSingular, Color: DefaultGroupColor}
		if inc.Attributes.Color != nil && *inc.Attributes.Color != "" {
			g.Color = *inc.Attributes.Color
		}
		if inc.Attributes.Icon != nil {
			g.Icon = *inc.Attributes.Icon
		}
		p.Groups = append(p.Groups, g)
	}
	return p, nil
}

// tokenClient returns a copy of the configured HTTP client that sends
// "Authorization: Token <token>". Timeout, redirect policy and jar carry over.
func (c *Client) tokenClient(token string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Token",
	})
	hc := *c.http
	hc.Transport = &oauth2.Transport{Base: c.http.Transport, Source: src}
	return &hc
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// flexibleID accepts a JSON number or a numeric string.
type flexibleID int64

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*f = flexibleID(n)
	return nil
}
