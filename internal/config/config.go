package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	LogStoreRedis    = "redis"
	LogStorePostgres = "postgres"
	LogStoreMemory   = "memory"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisURL    string `envconfig:"REDIS_URL"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// LogStore бэкенд лога переписки: redis, postgres или memory
	LogStore        string        `envconfig:"LOG_STORE" default:"redis"`
	LogStoreTimeout time.Duration `envconfig:"LOG_STORE_TIMEOUT" default:"5s"`

	// SendBuffer размер очереди исходящих сообщений на одно соединение
	SendBuffer     int      `envconfig:"SEND_BUFFER" default:"256"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
}

// Load читает .env.local / .env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.LogStore {
	case LogStoreRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis log store")
		}
	case LogStorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres log store")
		}
	case LogStoreMemory:
	default:
		return fmt.Errorf("unknown LOG_STORE %q", c.LogStore)
	}

	if c.SendBuffer <= 0 {
		return fmt.Errorf("SEND_BUFFER must be positive, got %d", c.SendBuffer)
	}
	if c.LogStoreTimeout <= 0 {
		return fmt.Errorf("LOG_STORE_TIMEOUT must be positive, got %s", c.LogStoreTimeout)
	}

	if c.IsProduction() && len(c.AllowedOrigins) == 0 {
		return errors.New("ALLOWED_ORIGINS is required in production")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
