// internal/config/config.go
//
// Process configuration loaded from the environment.
//   - .env is loaded first when present (godotenv); a missing file is not an error.
//   - Values are parsed into Config with caarlos0/env struct tags and defaults.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DevJWTSecret is used when JWT_SECRET is unset. Never rely on it in production.
const DevJWTSecret = "dev_secret_change_me"

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config holds every externally supplied setting.
type Config struct {
	Port            string        `env:"PORT"              envDefault:"3000"`
	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"24h"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	StoreDriver     string `env:"STORE_DRIVER"      envDefault:"memory"`
	DatabasePath    string `env:"DATABASE_PATH"     envDefault:"./data/app.db"`
	RedisURL        string `env:"REDIS_URL"`
	RedisRevokedKey string `env:"REDIS_REVOKED_KEY" envDefault:"revoked_tokens"`

	AdminEmails     []string      `env:"ADMIN_EMAILS"     envSeparator:","`
	CORSOrigin      string        `env:"CORS_ORIGIN"      envDefault:"*"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the current environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case DriverMemory, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	for i, e := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}
	return cfg, nil
}

// UsesDevSecret reports whether no JWT_SECRET was supplied.
func (c Config) UsesDevSecret() bool { return c.JWTSecret == "" }

// Secret returns the signing secret, falling back to DevJWTSecret.
func (c Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte(DevJWTSecret)
	}
	return []byte(c.JWTSecret)
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e != "" && e == email {
			return true
		}
	}
	return false
}
