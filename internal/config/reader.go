package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// ReadEnv reads the configuration from environment variables.
// Values from a .env file are picked up automatically on import
// of the app package.
func ReadEnv() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	switch cfg.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return nil, fmt.Errorf("unknown environment %q", cfg.Env)
	}

	return cfg, nil
}
