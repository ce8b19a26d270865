// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains example secrets that must never reach production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the console configuration loaded from environment variables.
type Config struct {
	// Backend API
	APIURL     string        `env:"ARTSPACE_API_URL" envDefault:"http://localhost:8080"`
	APIPrefix  string        `env:"ARTSPACE_API_PREFIX"`
	APITimeout time.Duration `env:"ARTSPACE_API_TIMEOUT" envDefault:"0s"`

	// Console server
	DBPath        string `env:"ARTSPACE_DB_PATH" envDefault:"./data/artspace.db"`
	SessionSecret string `env:"ARTSPACE_SESSION_SECRET,required"`
	ServerHost    string `env:"ARTSPACE_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"ARTSPACE_SERVER_PORT" envDefault:"5000"`
	Env           string `env:"ARTSPACE_ENV" envDefault:"development"`
	LogLevel      string `env:"ARTSPACE_LOG_LEVEL" envDefault:"info"`

	// Sessions
	RedisURL        string        `env:"ARTSPACE_REDIS_URL"` // Optional; moves visitor sessions to Redis
	SessionLifetime time.Duration `env:"ARTSPACE_SESSION_LIFETIME" envDefault:"24h"`
	VisitorIdleTTL  time.Duration `env:"ARTSPACE_VISITOR_IDLE_TTL" envDefault:"2h"`

	// UI timing
	SearchDebounce time.Duration `env:"ARTSPACE_SEARCH_DEBOUNCE" envDefault:"300ms"`
	GuardWait      time.Duration `env:"ARTSPACE_GUARD_WAIT" envDefault:"2s"`

	// Audit log retention in days
	EventRetentionDays int `env:"ARTSPACE_EVENT_RETENTION_DAYS" envDefault:"30"`
}

// IsDevelopment returns true if the console is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisSessions returns true if sessions should be stored in Redis.
func (c Config) UseRedisSessions() bool {
	return c.RedisURL != ""
}

// APIBaseURL joins the backend URL with the optional path prefix.
func (c Config) APIBaseURL() string {
	base := strings.TrimRight(c.APIURL, "/")
	prefix := strings.Trim(c.APIPrefix, "/")
	if prefix == "" {
		return base
	}
	return base + "/" + prefix
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("ARTSPACE_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("ARTSPACE_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("ARTSPACE_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("ARTSPACE_API_URL must be an absolute http(s) URL, got %q", cfg.APIURL)
	}

	if cfg.GuardWait < 0 || cfg.SearchDebounce < 0 {
		return nil, fmt.Errorf("ARTSPACE_GUARD_WAIT and ARTSPACE_SEARCH_DEBOUNCE must not be negative")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret mixes at least 3 character classes.
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
