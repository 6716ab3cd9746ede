// Package config loads process configuration from environment variables.
//
// Everything the process needs is collected into one struct at startup and
// passed down explicitly — no package reads os.Getenv on its own. The token
// service in particular receives the signing secret through its constructor,
// so its behaviour is fully determined by its inputs and trivial to test.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all environment-provided settings.
//
// JWT_SECRET_KEY has no default on purpose: running an auth server with an
// empty or guessable signing key silently breaks every security property, so
// its absence is a fatal startup condition rather than a warning.
type Config struct {
	Port         int    `env:"PORT" envDefault:"8080"`
	DBPath       string `env:"DB_PATH" envDefault:"data/task-manager.db"`
	JWTSecretKey string `env:"JWT_SECRET_KEY"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	if cfg.JWTSecretKey == "" {
		return Config{}, errors.New("config: JWT_SECRET_KEY is not set")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: invalid PORT %d", cfg.Port)
	}
	return cfg, nil
}
