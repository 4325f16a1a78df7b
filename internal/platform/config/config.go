// Package config builds service configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything cmd/server needs to wire the service.
type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string

	Redis RedisConfig

	// Reminders drives the background sweep that recalculates compliance and
	// emails administrators about expiring documents.
	Reminders RemindersConfig

	// SummaryCacheTTL bounds staleness of the cached compliance summary.
	SummaryCacheTTL time.Duration
}

// RedisConfig configures the optional Redis cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RemindersConfig configures the reminder worker.
type RemindersConfig struct {
	Interval time.Duration
	// LeadWindow is how far ahead of a document's expiry the reminder fires.
	LeadWindow time.Duration
}

// FromEnv reads configuration from environment variables, applying
// development defaults for anything unset.
func FromEnv() Config {
	return Config{
		Addr:            envString("NORMATIVA_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSigningKey:   envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SummaryCacheTTL: envDuration("SUMMARY_CACHE_TTL", 5*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Reminders: RemindersConfig{
			Interval:   envDuration("REMINDER_INTERVAL", 24*time.Hour),
			LeadWindow: envDuration("REMINDER_LEAD_WINDOW", 30*24*time.Hour),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
