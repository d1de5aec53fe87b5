package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"guestbook/internal/adapter/cookie"
	"guestbook/internal/adapter/memory"
	"guestbook/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMessages_Memory(t *testing.T) {
	repo, closeFn, err := openMessages(context.Background(), &config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	assert.IsType(t, &memory.DB{}, repo)
}

func TestOpenMessages_BadPostgresURL(t *testing.T) {
	_, _, err := openMessages(context.Background(), &config.Config{
		StoreDriver: config.DriverPostgres,
		DatabaseURL: "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1",
	})
	assert.Error(t, err)
}

func TestOpenSessions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, closeFn, err := openSessions(context.Background(), &config.Config{SessionBackend: config.SessionMemory}, logger)
	require.NoError(t, err)
	assert.IsType(t, &memory.SessionStore{}, store)
	assert.NoError(t, closeFn())

	store, closeFn, err = openSessions(context.Background(), &config.Config{SessionBackend: config.SessionCookie}, logger)
	require.NoError(t, err)
	assert.IsType(t, &cookie.SessionStore{}, store)
	assert.NoError(t, closeFn())

	_, _, err = openSessions(context.Background(), &config.Config{
		SessionBackend: config.SessionCookie,
		SessionKey:     []byte("short"),
	}, logger)
	assert.Error(t, err)
}
