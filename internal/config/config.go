// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from the environment and applies
// the per-environment profile (development, testing, production).
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Environment profiles.
const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

// Seed modes for the region and country reference tables.
const (
	// SeedModeReset drops every row and reloads the source file on each startup.
	SeedModeReset = "reset"
	// SeedModeOnce loads the source file only when the table is empty.
	SeedModeOnce = "once"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"generate_a_secret_key",
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env           string `env:"PARA_ENV" envDefault:"development"`
	SessionSecret string `env:"PARA_SESSION_SECRET,required"`
	CSRFSecret    string `env:"PARA_CSRF_SECRET"`
	DBPath        string `env:"PARA_DB_PATH" envDefault:"./data/paralympics.db"`
	ServerHost    string `env:"PARA_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"PARA_SERVER_PORT" envDefault:"8080"`
	LogLevel      string `env:"PARA_LOG_LEVEL" envDefault:"info"`

	// Files
	UploadsDir  string `env:"PARA_UPLOADS_DIR" envDefault:"./uploads"`
	LogosDir    string `env:"PARA_LOGOS_DIR" envDefault:"./static/images/logos"`
	DataDir     string `env:"PARA_DATA_DIR"` // Empty uses the embedded datasets
	MaxUploadMB int    `env:"PARA_MAX_UPLOAD_MB" envDefault:"5"`

	// Reference data
	SeedMode string `env:"PARA_SEED_MODE" envDefault:"reset"`

	// Dashboard figure cache
	RedisURL      string `env:"PARA_REDIS_URL"`
	MemcachedAddr string `env:"PARA_MEMCACHED_ADDR"`
	CachePrefix   string `env:"PARA_CACHE_PREFIX" envDefault:"para:"`
	CacheTTL      int    `env:"PARA_CACHE_TTL" envDefault:"3600"` // seconds

	// Messaging
	NATSURL       string `env:"PARA_NATS_URL"`
	WebhookURL    string `env:"PARA_WEBHOOK_URL"`
	WebhookSecret string `env:"PARA_WEBHOOK_SECRET"`

	// Event log
	EventRetentionDays int    `env:"PARA_EVENT_RETENTION_DAYS" envDefault:"30"`
	GeoIPDBPath        string `env:"PARA_GEOIP_DB_PATH"` // GeoLite2-Country.mmdb; empty disables lookups

	// Set by the profile, not by the environment.
	Testing       bool `env:"-"`
	SecureCookies bool `env:"-"`
	SQLEcho       bool `env:"-"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsTesting returns true if the testing profile is active.
func (c Config) IsTesting() bool {
	return c.Env == EnvTesting
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// CSRFKey returns the key for the CSRF middleware, falling back to the session secret.
func (c Config) CSRFKey() []byte {
	if c.CSRFSecret != "" {
		return []byte(c.CSRFSecret)
	}
	return []byte(c.SessionSecret)
}

// MaxUploadBytes returns the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// CacheBackend reports which cache the dashboard should use.
func (c Config) CacheBackend() string {
	switch {
	case c.RedisURL != "":
		return "redis"
	case c.MemcachedAddr != "":
		return "memcached"
	default:
		return "memory"
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.applyProfile(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyProfile sets the profile-derived flags for the selected environment.
func (c *Config) applyProfile() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	switch c.Env {
	case EnvDevelopment:
		c.SecureCookies = false
	case EnvTesting:
		c.Testing = true
		c.SQLEcho = true
		c.SecureCookies = false
	case EnvProduction:
		c.SecureCookies = true
	default:
		return fmt.Errorf("PARA_ENV must be one of %s, %s, %s; got %q",
			EnvDevelopment, EnvTesting, EnvProduction, c.Env)
	}
	return nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("PARA_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak || c.CSRFSecret == weak {
			return fmt.Errorf("PARA_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(c.SessionSecret) {
		slog.Warn("PARA_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	switch c.SeedMode {
	case SeedModeReset, SeedModeOnce:
	default:
		return fmt.Errorf("PARA_SEED_MODE must be %q or %q, got %q", SeedModeReset, SeedModeOnce, c.SeedMode)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("PARA_MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
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
