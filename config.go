package authd

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all process-wide settings. It is parsed once at startup
// and passed by reference into the token codec, CSRF guard and OAuth
// client; none of these read the environment themselves.
type Config struct {
	Addr        string `env:"AUTHD_ADDR" envDefault:":8080"`
	Environment string `env:"AUTHD_ENV" envDefault:"development"`

	// Signing material. A missing secret is a startup failure, never a
	// generated or literal fallback (that would break verification
	// across restarts and instances).
	JWTSecret  string        `env:"AUTHD_JWT_SECRET"`
	JWTAlg     string        `env:"AUTHD_JWT_ALG" envDefault:"HS256"`
	TokenTTL   time.Duration `env:"AUTHD_TOKEN_TTL" envDefault:"168h"`
	CSRFSecret string        `env:"AUTHD_CSRF_SECRET"`

	GoogleClientID     string `env:"AUTHD_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"AUTHD_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"AUTHD_GOOGLE_REDIRECT_URL"`

	FrontendURL string `env:"AUTHD_FRONTEND_URL" envDefault:"http://localhost:3000"`
	DatabaseDSN string `env:"AUTHD_DATABASE_DSN"`
}

// LoadConfig parses configuration from the environment and validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the invariants that make the process safe to start.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("AUTHD_JWT_SECRET is required")
	}
	if c.CSRFSecret == "" {
		return fmt.Errorf("AUTHD_CSRF_SECRET is required")
	}
	switch c.JWTAlg {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported signing algorithm %q", c.JWTAlg)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("AUTHD_TOKEN_TTL must be positive")
	}
	return nil
}

// Production reports whether the service runs with production cookie
// attributes (Secure, SameSite=None).
func (c *Config) Production() bool {
	return c.Environment == "production"
}
