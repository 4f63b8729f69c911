package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env    string `env:"APP_ENV" envDefault:"dev"`
	Port   string `env:"API_PORT" envDefault:"8080"`
	DBURL  string `env:"DB_DSN"`
	Origin string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionIdle   time.Duration `env:"SESSION_IDLE" envDefault:"20m"`

	SMTPAddr string `env:"SMTP_ADDR"`
	SMTPFrom string `env:"SMTP_FROM" envDefault:"support@localhost"`
}

// Load reads .env if present, then the process environment. A missing
// DB_DSN selects the in-memory store, so only the session secret is
// strictly required.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionSecret == "" {
		if cfg.Env != "dev" {
			return Config{}, fmt.Errorf("SESSION_SECRET is required outside dev")
		}
		cfg.SessionSecret = "dev-only-secret"
	}
	return cfg, nil
}
