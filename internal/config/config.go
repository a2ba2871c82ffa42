// Package config loads server configuration from the environment
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Leaderboard backend constants
const (
	LeaderboardMemory = "memory"
	LeaderboardRedis  = "redis"
)

// Config holds all server settings
type Config struct {
	// Host is the bind address for both listeners
	Host string `env:"GAME_SERVER_HOST" envDefault:"0.0.0.0"`

	// WSPort is the WebSocket listener port
	WSPort int `env:"GAME_SERVER_PORT" envDefault:"8080"`

	// StatusPort is the read-only status/metrics listener port
	StatusPort int `env:"HTTP_SERVER_PORT" envDefault:"8081"`

	// JWTSecret signs and verifies bearer tokens
	JWTSecret string `env:"JWT_SECRET"`

	// LeaderboardBackend selects the results store ("memory" or "redis")
	LeaderboardBackend string `env:"LEADERBOARD_BACKEND" envDefault:"memory"`

	// RedisURL is required when LeaderboardBackend is "redis"
	RedisURL string `env:"REDIS_URL"`

	// SessionTTL is how long a finished or empty race survives before
	// eviction
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"10m"`

	// SweepInterval is how often the eviction sweeper runs
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}

// Load parses and validates configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must be set")
	}

	switch cfg.LeaderboardBackend {
	case LeaderboardMemory:
	case LeaderboardRedis:
		if cfg.RedisURL == "" {
			return Config{}, errors.New("REDIS_URL required when LEADERBOARD_BACKEND=redis")
		}
	default:
		return Config{}, fmt.Errorf("invalid LEADERBOARD_BACKEND %q: must be 'memory' or 'redis'", cfg.LeaderboardBackend)
	}

	return cfg, nil
}
