package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" envPrefix:"HTTP_"`
	Auth     AuthConfig     `yaml:"auth" envPrefix:"AUTH_"`
	JWT      JWTConfig      `yaml:"jwt" envPrefix:"JWT_"`
	Postgres PostgresConfig `yaml:"postgres" envPrefix:"POSTGRES_"`
	Valkey   ValkeyConfig   `yaml:"valkey" envPrefix:"VALKEY_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address" env:"ADDRESS"`
	ReadTimeout    time.Duration   `yaml:"readTimeout" env:"READ_TIMEOUT"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`
	ShutdownGrace  time.Duration   `yaml:"shutdownGrace" env:"SHUTDOWN_GRACE"`
	AllowedOrigins []string        `yaml:"allowedOrigins" env:"ALLOWED_ORIGINS"`
	RateLimit      RateLimitConfig `yaml:"rateLimit" envPrefix:"RATE_LIMIT_"`
	Retry          RetryConfig     `yaml:"retry" envPrefix:"RETRY_"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"ENABLED"`
	RequestsPerMinute int  `yaml:"requestsPerMinute" env:"RPM"`
	Burst             int  `yaml:"burst" env:"BURST"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" env:"ENABLED"`
	MaxAttempts int           `yaml:"maxAttempts" env:"MAX_ATTEMPTS"`
	BaseBackoff time.Duration `yaml:"baseBackoff" env:"BASE_BACKOFF"`
	Exclude     []string      `yaml:"exclude" env:"EXCLUDE"`
}

// AuthConfig selects how successful sign-ins are bound to clients.
type AuthConfig struct {
	UseJWTByDefault bool          `yaml:"useJwtByDefault" env:"USE_JWT_BY_DEFAULT"`
	CookieName      string        `yaml:"cookieName" env:"COOKIE_NAME"`
	CookieLifetime  time.Duration `yaml:"cookieLifetime" env:"COOKIE_LIFETIME"`
	CookieSecure    bool          `yaml:"cookieSecure" env:"COOKIE_SECURE"`
	PasswordHasher  string        `yaml:"passwordHasher" env:"PASSWORD_HASHER"`
}

// JWTConfig holds access token signing parameters.
type JWTConfig struct {
	Secret              string        `yaml:"secret" env:"SECRET"`
	Issuer              string        `yaml:"issuer" env:"ISSUER"`
	Audience            string        `yaml:"audience" env:"AUDIENCE"`
	AccessTokenLifetime time.Duration `yaml:"accessTokenLifetime" env:"ACCESS_TOKEN_LIFETIME"`
}

// PostgresConfig contains DSN and pooling settings. An empty DSN selects
// the in-memory repositories.
type PostgresConfig struct {
	DSN      string `yaml:"dsn" env:"DSN"`
	MaxConns int32  `yaml:"maxConns" env:"MAX_CONNS"`
	MinConns int32  `yaml:"minConns" env:"MIN_CONNS"`
	Migrate  bool   `yaml:"migrate" env:"MIGRATE"`
}

// ValkeyConfig backs the refresh token store.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Addr    string `yaml:"addr" env:"ADDR"`
	Prefix  string `yaml:"prefix" env:"PREFIX"`
}

// RedisConfig backs the cookie session store.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
}

// Load layers defaults, the YAML file, a .env file and the environment, in
// that order, then validates the result.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:       ":8080",
			ReadTimeout:   5 * time.Second,
			WriteTimeout:  5 * time.Second,
			ShutdownGrace: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/metrics",
				},
			},
		},
		Auth: AuthConfig{
			UseJWTByDefault: true,
			CookieName:      "rencard_session",
			CookieLifetime:  14 * 24 * time.Hour,
			CookieSecure:    true,
			PasswordHasher:  "bcrypt",
		},
		JWT: JWTConfig{
			Issuer:              "rencard-user",
			Audience:            "rencard-clients",
			AccessTokenLifetime: 60 * time.Minute,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
			Migrate:  true,
		},
		Valkey: ValkeyConfig{Prefix: "refresh"},
		Redis:  RedisConfig{Prefix: "session"},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt.secret cannot be empty")
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		return errors.New("jwt.issuer cannot be empty")
	}
	if strings.TrimSpace(c.JWT.Audience) == "" {
		return errors.New("jwt.audience cannot be empty")
	}
	if c.JWT.AccessTokenLifetime <= 0 {
		return errors.New("jwt.accessTokenLifetime must be positive")
	}
	if c.Auth.CookieLifetime <= 0 {
		return errors.New("auth.cookieLifetime must be positive")
	}
	if strings.TrimSpace(c.Auth.CookieName) == "" {
		return errors.New("auth.cookieName cannot be empty")
	}
	switch strings.ToLower(c.Auth.PasswordHasher) {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("auth.passwordHasher %q is not supported", c.Auth.PasswordHasher)
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey is enabled")
	}
	if c.Redis.Enabled && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("redis.addr cannot be empty when redis is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
