// internal/config/config.go
//
// Process configuration from the environment.
// A `.env` file, when present, is loaded first (development convenience);
// real environment variables always win.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

type Config struct {
	Port         string `env:"PORT"          envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
	AppEnv       string `env:"APP_ENV"       envDefault:"development"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	JWTSecret  string        `env:"JWT_SECRET"  envDefault:"dev_secret_change_me"`
	CookieName string        `env:"COOKIE_NAME" envDefault:"blocksum_session"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	AnimationDuration time.Duration `env:"ANIMATION_DURATION" envDefault:"2s"`
	SettleDelay       time.Duration `env:"SETTLE_DELAY"       envDefault:"100ms"`

	DailySalt   string `env:"DAILY_SALT"   envDefault:"local_dev_salt"`
	DefaultLang string `env:"DEFAULT_LANG" envDefault:"ja"`
}

// Load reads `.env` (if any) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the current environment without touching `.env`.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.AnimationDuration <= 0:
		return errors.New("config: ANIMATION_DURATION must be positive")
	case c.SettleDelay <= 0:
		return errors.New("config: SETTLE_DELAY must be positive")
	case c.SessionTTL <= 0:
		return errors.New("config: SESSION_TTL must be positive")
	}
	if _, err := language.Parse(c.DefaultLang); err != nil {
		return fmt.Errorf("config: DEFAULT_LANG: %w", err)
	}
	return nil
}

// Production reports whether cookies must be Secure.
func (c *Config) Production() bool { return c.AppEnv == "production" }

// Addr is the listen address.
func (c *Config) Addr() string { return ":" + c.Port }
