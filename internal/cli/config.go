package cli

import "os"

// Config holds CLI settings, populated from flags and environment
type Config struct {
	// StatusURL is the base URL of the status server
	StatusURL string

	// WSURL is the WebSocket endpoint of the game server
	WSURL string

	// Token is a pre-issued bearer token for the race command
	Token string

	// Secret, when set, lets the race command mint its own token
	Secret string
}

// DefaultConfig returns CLI defaults, honoring environment overrides
func DefaultConfig() *Config {
	cfg := &Config{
		StatusURL: "http://localhost:8081",
		WSURL:     "ws://localhost:8080/ws",
	}

	if v := os.Getenv("TYPERACE_STATUS_URL"); v != "" {
		cfg.StatusURL = v
	}
	if v := os.Getenv("TYPERACE_WS_URL"); v != "" {
		cfg.WSURL = v
	}
	if v := os.Getenv("TYPERACE_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Secret = v
	}

	return cfg
}
