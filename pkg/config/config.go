package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config configuración del servidor, cargada desde variables de entorno
type Config struct {
	Addr          string        `env:"ADDR" envDefault:":8080"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	MatchTTL      time.Duration `env:"MATCH_TTL" envDefault:"168h"`
}

// Load lee la configuración del entorno
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
