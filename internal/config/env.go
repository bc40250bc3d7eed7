package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the process settings read from the environment.
type Env struct {
	DBPath    string `env:"TRIPPY_DB" envDefault:"trippy.db"`
	CacheDir  string `env:"TRIPPY_CACHE_DIR" envDefault:"cache"`
	OutputDir string `env:"TRIPPY_OUTPUT_DIR" envDefault:"out"`
	Workers   int    `env:"TRIPPY_WORKERS" envDefault:"4"`
	Listen    string `env:"TRIPPY_LISTEN" envDefault:":8080"`
	Config    string `env:"TRIPPY_CONFIG"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses an Env and rejects a non-positive worker count.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return e, err
	}
	if e.Workers < 1 {
		return e, fmt.Errorf("TRIPPY_WORKERS must be positive, got %d", e.Workers)
	}
	return e, nil
}
