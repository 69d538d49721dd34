// Package config loads process configuration once at startup into an
// immutable value, the way the teacher's internal/config/config.go does.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host string
	Port string

	DatabaseURL string
	RedisURL    string

	LogLevel string

	PresenceTTL time.Duration

	// InternalAuthSecret enables signed-proxy auth mode when non-empty
	// (spec.md §6). SessionSecretKey is the fallback proxy secret.
	InternalAuthSecret string
	SessionSecretKey   string

	ReservationTTL time.Duration

	ChatWaitDefault      time.Duration
	ChatWaitConversation time.Duration
	ChatWaitMax          time.Duration

	RequestTimeout time.Duration
	DrainTimeout   time.Duration

	OutboxBatchSize   int
	OutboxMaxAttempts int
	OutboxBaseBackoff time.Duration
	OutboxMaxBackoff  time.Duration

	EscalationDefaultExpiry time.Duration

	StreamHeartbeat    time.Duration
	StreamBufferSize   int
}

func Load() (Config, error) {
	cfg := Config{
		Host:        env("HOST", "0.0.0.0"),
		Port:        env("PORT", "8080"),
		DatabaseURL: env("DATABASE_URL", ""),
		RedisURL:    env("REDIS_URL", "redis://localhost:6379/0"),
		LogLevel:    env("LOG_LEVEL", "info"),

		InternalAuthSecret: env("INTERNAL_AUTH_SECRET", ""),
		SessionSecretKey:   env("SESSION_SECRET_KEY", ""),

		ReservationTTL: 300 * time.Second,

		ChatWaitDefault:      60 * time.Second,
		ChatWaitConversation: 300 * time.Second,
		ChatWaitMax:          600 * time.Second,

		RequestTimeout: 30 * time.Second,
		DrainTimeout:   15 * time.Second,

		OutboxBatchSize:   50,
		OutboxMaxAttempts: 8,
		OutboxBaseBackoff: time.Second,
		OutboxMaxBackoff:  5 * time.Minute,

		EscalationDefaultExpiry: 72 * time.Hour,

		StreamHeartbeat:  15 * time.Second,
		StreamBufferSize: 64,
	}

	ttl, err := envInt("PRESENCE_TTL_SECONDS", 1800)
	if err != nil {
		return Config{}, err
	}
	cfg.PresenceTTL = time.Duration(ttl) * time.Second

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, fmt.Errorf("missing DATABASE_URL")
	}

	return cfg, nil
}

// ProxySecret returns the active signed-proxy HMAC secret: INTERNAL_AUTH_SECRET
// takes priority, SESSION_SECRET_KEY is the fallback (spec.md §6). Empty
// means proxy mode is disabled.
func (c Config) ProxySecret() string {
	if c.InternalAuthSecret != "" {
		return c.InternalAuthSecret
	}
	return c.SessionSecretKey
}

func (c Config) Addr() string { return c.Host + ":" + c.Port }

func env(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
