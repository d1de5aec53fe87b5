// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
	SessionCookie = "cookie"
)

// DefaultForumURL is used when FORUM_URL is unset.
const DefaultForumURL = "https://bbs.spark-app.store"

// Config holds all runtime configuration values.
type Config struct {
	Addr string

	ForumURL     string
	ForumTimeout time.Duration

	StoreDriver string
	DatabaseURL string

	SessionBackend string
	SessionTTL     time.Duration
	SessionKey     []byte // 32 bytes, cookie backend only
	CookieSecure   bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MessageMaxLength int

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		Addr:           getEnv("ADDR", ":8080"),
		ForumURL:       strings.TrimRight(getEnv("FORUM_URL", DefaultForumURL), "/"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", SessionMemory)),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.ForumTimeout, err = durationEnv("FORUM_TIMEOUT", 15*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 12*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.CookieSecure, err = boolEnv("COOKIE_SECURE", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.MessageMaxLength, err = intEnv("MESSAGE_MAX_LENGTH", 1000); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionKey, err = keyEnv("SESSION_KEY"); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error

	u, err := url.Parse(c.ForumURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("FORUM_URL must be an absolute http(s) URL, got %q", c.ForumURL))
	}
	if c.ForumTimeout < 0 {
		errs = append(errs, errors.New("FORUM_TIMEOUT must not be negative"))
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres, DriverMySQL:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=%s", c.StoreDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.SessionBackend {
	case SessionMemory, SessionRedis, SessionCookie:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.MessageMaxLength <= 0 {
		errs = append(errs, errors.New("MESSAGE_MAX_LENGTH must be positive"))
	}
	return errs
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// keyEnv decodes a hex-encoded 32-byte key. An unset variable yields nil.
func keyEnv(key string) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%s must be 32 bytes (64 hex characters), got %d bytes", key, len(b))
	}
	return b, nil
}
