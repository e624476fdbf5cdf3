// Package config loads typed configuration structs from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Validator lets a config struct check itself after parsing. Load calls it
// when implemented.
type Validator interface {
	Validate() error
}

// Load parses environment variables into cfg using its `env` tags, then runs
// cfg's own validation if it has any.
//
// Example:
//
//	type Config struct {
//	    RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
//	    HTTPPort  int    `env:"HTTP_PORT" envDefault:"8080"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	return nil
}
