package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"guestbook/internal/adapter/forum"
	"guestbook/internal/domain"

	"github.com/stretchr/testify/assert"
)

type mockVerifier struct {
	VerifyFunc func(ctx context.Context, username, password string) (domain.Credentials, error)
	calls      int
}

func (m *mockVerifier) VerifyCredentials(ctx context.Context, username, password string) (domain.Credentials, error) {
	m.calls++
	return m.VerifyFunc(ctx, username, password)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		verifyErr error
		wantCode  int
		wantCalls int
		wantOut   []string
	}{
		{
			name:      "success",
			input:     "alice\ncorrect\n",
			wantCode:  0,
			wantCalls: 1,
			wantOut:   []string{"Login successful!", "Token: T1", "User ID: 7"},
		},
		{
			name:      "rejected",
			input:     "alice\nwrong\n",
			verifyErr: &forum.RejectedError{StatusCode: 401, Body: `{"errors":[]}`},
			wantCode:  1,
			wantCalls: 1,
			wantOut:   []string{"Status code: 401", `Response: {"errors":[]}`},
		},
		{
			name:      "connection error",
			input:     "alice\ncorrect\n",
			verifyErr: &domain.UpstreamError{Op: "verify", Err: errors.New("connection refused")},
			wantCode:  1,
			wantCalls: 1,
			wantOut:   []string{"Connection error: connection refused"},
		},
		{
			name:      "missing password",
			input:     "alice\n\n",
			wantCode:  1,
			wantCalls: 0,
			wantOut:   []string{"Username and password are required."},
		},
		{
			name:      "no trailing newline",
			input:     "alice\ncorrect",
			wantCode:  0,
			wantCalls: 1,
			wantOut:   []string{"Login successful!"},
		},
		{
			name:      "empty input",
			input:     "",
			wantCode:  1,
			wantCalls: 0,
			wantOut:   []string{"read username"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockVerifier{
				VerifyFunc: func(ctx context.Context, username, password string) (domain.Credentials, error) {
					assert.Equal(t, "alice", username)
					if tt.verifyErr != nil {
						return domain.Credentials{}, tt.verifyErr
					}
					return domain.Credentials{Token: "T1", UserID: 7}, nil
				},
			}
			var out bytes.Buffer
			code := run(context.Background(), strings.NewReader(tt.input), &out, m, readLine)

			assert.Equal(t, tt.wantCode, code, "exit code")
			assert.Equal(t, tt.wantCalls, m.calls, "verify calls")
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRun_NeverPrintsPassword(t *testing.T) {
	m := &mockVerifier{VerifyFunc: func(context.Context, string, string) (domain.Credentials, error) {
		return domain.Credentials{Token: "T1", UserID: 7}, nil
	}}
	var out bytes.Buffer
	run(context.Background(), strings.NewReader("alice\nhunter2\n"), &out, m, func(in *bufio.Reader) (string, error) {
		return readLine(in)
	})
	assert.NotContains(t, out.String(), "hunter2", "password echoed to output")
}
