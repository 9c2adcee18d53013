// Package config reads service settings from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Development fallbacks. Production deployments are expected to set every
// ADMIN_* variable.
const (
	DefaultPort          = "8080"
	DefaultDatabase      = "showcase.db"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultSessionIdle   = 30 * time.Minute
	DefaultRetention     = 365 * 24 * time.Hour
	DefaultMaxViews      = 1000
)

// Config holds service settings.
type Config struct {
	Port          string
	Database      string
	DecksFile     string // empty means the embedded catalogue
	AdminUsername string
	AdminPassword string
	SessionIdle   time.Duration
	Retention     time.Duration
	MaxViews      int // mounted carousel views kept at once; 0 means no limit
	GinMode       string
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load reads the given .env files, skipping ones that do not exist, and
// then builds a Config from the process environment. Variables already set
// in the environment win over .env values.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, falling back to development
// defaults.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Port:          get("PORT", DefaultPort),
		Database:      get("SHOWCASE_DB", DefaultDatabase),
		DecksFile:     get("SHOWCASE_DECKS", ""),
		AdminUsername: get("ADMIN_USERNAME", ""),
		AdminPassword: get("ADMIN_PASSWORD", ""),
		GinMode:       get("GIN_MODE", ""),
	}

	var err error
	if cfg.SessionIdle, err = duration(get("SESSION_IDLE", ""), DefaultSessionIdle); err != nil {
		return Config{}, fmt.Errorf("SESSION_IDLE: %w", err)
	}
	if cfg.Retention, err = duration(get("RETENTION", ""), DefaultRetention); err != nil {
		return Config{}, fmt.Errorf("RETENTION: %w", err)
	}

	cfg.MaxViews = DefaultMaxViews
	if raw := get("MAX_VIEWS", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("MAX_VIEWS: must be a non-negative integer, got %q", raw)
		}
		cfg.MaxViews = n
	}

	if cfg.AdminUsername == "" {
		cfg.AdminUsername = DefaultAdminUsername
		slog.Warn("using default admin username; set ADMIN_USERNAME")
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = DefaultAdminPassword
		slog.Warn("using default admin password; set ADMIN_PASSWORD")
	}
	return cfg, nil
}

func duration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}
