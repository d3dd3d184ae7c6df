package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	VerifyToken string `env:"WEBHOOK_VERIFY_TOKEN,required"`
	APIBaseURL  string `env:"D360_API_URL" envDefault:"https://waba-v2.360dialog.io"`
	APIKey      string `env:"D360_API_KEY,required"`

	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"memory"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"sqlite"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"worklog.db"`
	DatabaseDSN    string `env:"DATABASE_DSN"`

	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"worklog.records"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
