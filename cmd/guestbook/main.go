package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guestbook/internal/adapter/cookie"
	"guestbook/internal/adapter/forum"
	adapthttp "guestbook/internal/adapter/http"
	"guestbook/internal/adapter/memory"
	"guestbook/internal/adapter/mysql"
	"guestbook/internal/adapter/postgres"
	"guestbook/internal/adapter/redis"
	"guestbook/internal/app"
	"guestbook/internal/config"
	"guestbook/internal/domain"
	"guestbook/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("exit", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	messages, closeMessages, err := openMessages(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeMessages() }()

	sessions, closeSessions, err := openSessions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeSessions() }()

	fc := forum.New(cfg.ForumURL, forum.WithTimeout(cfg.ForumTimeout))
	authSvc := app.NewAuthService(fc, fc, sessions, cfg.SessionTTL)
	gbSvc := app.NewGuestbookService(messages, cfg.MessageMaxLength)

	h := adapthttp.New(authSvc, gbSvc, adapthttp.Options{
		ForumURL:     cfg.ForumURL,
		CookieSecure: cfg.CookieSecure,
		Logger:       logger,
	}).Handler()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			"addr", cfg.Addr,
			"forum", cfg.ForumURL,
			"store", cfg.StoreDriver,
			"sessions", cfg.SessionBackend,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openMessages(ctx context.Context, cfg *config.Config) (domain.MessageRepository, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return db, db.Close, nil
	case config.DriverMySQL:
		db, err := mysql.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql: %w", err)
		}
		return db, db.Close, nil
	default:
		return memory.New(), noopClose, nil
	}
}

func openSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.SessionStore, func() error, error) {
	switch cfg.SessionBackend {
	case config.SessionRedis:
		rdb, err := redis.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return redis.NewSessionStore(rdb, redis.DefaultPrefix), rdb.Close, nil
	case config.SessionCookie:
		key := cfg.SessionKey
		if len(key) == 0 {
			var err error
			if key, err = cookie.RandomKey(); err != nil {
				return nil, nil, err
			}
			logger.Warn("SESSION_KEY not set, sessions will not survive a restart")
		}
		store, err := cookie.NewSessionStore(key)
		if err != nil {
			return nil, nil, err
		}
		return store, noopClose, nil
	default:
		return memory.NewSessionStore(), noopClose, nil
	}
}

func noopClose() error { return nil }
