package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/viktsys/tradestore/logger"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"

	EnvProduction = "production"
)

type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"5000"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	TradesDir      string `env:"TRADES_DIR" envDefault:"trades"`
	DatabaseURL    string `env:"DATABASE_URL"`
	BadgerDir      string `env:"BADGER_DIR" envDefault:"data/badger"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"trades"`

	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Log logger.Config
}

// Load reads a .env file when present, then the environment. Variables
// already set in the environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if cfg.IsProduction() {
		cfg.Log.JSON = true
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 1-65535", c.Port)
	}

	switch c.StorageBackend {
	case BackendFile:
		if c.TradesDir == "" {
			return fmt.Errorf("TRADES_DIR is required for the %s backend", BackendFile)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	case BackendBadger:
		if c.BadgerDir == "" {
			return fmt.Errorf("BADGER_DIR is required for the %s backend", BackendBadger)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
