package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/avolkova/flowerdelivery/pkg/config"
)

// Config holds all configuration for the flower delivery application.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"flowers"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"flowers_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"flower_delivery"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis (session carts)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart sessions
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"change-me-in-production"`
	CartTTL       time.Duration `env:"CART_TTL" envDefault:"168h"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Telegram
	TelegramToken       string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL      string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	AdminTelegramChatID int64  `env:"ADMIN_TELEGRAM_CHAT_ID"`

	// Order acceptance window (hours of day, inclusive)
	OrderWindowOpen  int `env:"ORDER_WINDOW_OPEN_HOUR" envDefault:"1"`
	OrderWindowClose int `env:"ORDER_WINDOW_CLOSE_HOUR" envDefault:"23"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.OrderWindowOpen < 0 || c.OrderWindowOpen > 23 {
		return fmt.Errorf("invalid order window open hour: %d", c.OrderWindowOpen)
	}
	if c.OrderWindowClose < 0 || c.OrderWindowClose > 23 {
		return fmt.Errorf("invalid order window close hour: %d", c.OrderWindowClose)
	}
	if c.OrderWindowOpen > c.OrderWindowClose {
		return fmt.Errorf("order window open hour %d after close hour %d", c.OrderWindowOpen, c.OrderWindowClose)
	}
	if c.CartTTL <= 0 {
		return fmt.Errorf("cart TTL must be positive: %s", c.CartTTL)
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisAddr returns the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
