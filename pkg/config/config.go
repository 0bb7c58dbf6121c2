package config

import (
	"errors"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/currency"
	"strings"
	"time"
)

const EnvPrefix = "SPICECART"

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	DB       DBConfig
	Redis    RedisConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		if c.DB.DSN == "" {
			return errors.New("postgres store requires SPICECART_DB_DSN")
		}
	case StoreRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return errors.New("redis store requires SPICECART_REDIS_URL or SPICECART_REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if _, err := c.Checkout.Unit(); err != nil {
		return err
	}
	return nil
}

type AppConfig struct {
	Env       string `envconfig:"SPICECART_APP_ENV" default:"dev"`
	Port      string `envconfig:"SPICECART_APP_PORT" default:"8080"`
	LogLevel  string `envconfig:"SPICECART_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"SPICECART_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

type StoreConfig struct {
	Driver     string `envconfig:"SPICECART_STORE_DRIVER" default:"memory"`
	Key        string `envconfig:"SPICECART_STORE_KEY" default:"cart"`
	QuotaBytes int    `envconfig:"SPICECART_STORE_QUOTA_BYTES" default:"5242880"`
}

type DBConfig struct {
	DSN             string        `envconfig:"SPICECART_DB_DSN"`
	MaxConns        int32         `envconfig:"SPICECART_DB_MAX_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPICECART_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPICECART_REDIS_URL"`
	Address      string        `envconfig:"SPICECART_REDIS_ADDR"`
	Password     string        `envconfig:"SPICECART_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPICECART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPICECART_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"SPICECART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPICECART_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"SPICECART_REDIS_WRITE_TIMEOUT" default:"3s"`
	TTL          time.Duration `envconfig:"SPICECART_REDIS_TTL" default:"720h"`
}

type CheckoutConfig struct {
	Currency string `envconfig:"SPICECART_CURRENCY" default:"INR"`
}

func (c CheckoutConfig) Unit() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", c.Currency, err)
	}
	return unit, nil
}
