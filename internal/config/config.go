// Package config loads application settings from COMPANYDB_* environment
// variables (and a .env file when present) into a validated Config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "COMPANYDB_"

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Primary  Primary        `koanf:"primary" validate:"required"`
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Storage  StorageConfig  `koanf:"storage" validate:"required"`
	Mongo    MongoConfig    `koanf:"mongo"`
	Postgres PostgresConfig `koanf:"postgres"`
	Logging  LoggingConfig  `koanf:"logging" validate:"required"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port              string        `koanf:"port" validate:"required"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"min=1s"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
}

type StorageConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=mongo postgres"`
}

type MongoConfig struct {
	URI            string        `koanf:"uri" validate:"required_if=Enabled true"`
	Database       string        `koanf:"database"`
	MaxPoolSize    uint64        `koanf:"max_pool_size"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	Enabled        bool          `koanf:"-"`
}

type PostgresConfig struct {
	DSN     string `koanf:"dsn" validate:"required_if=Enabled true"`
	Enabled bool   `koanf:"-"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=json console"`
}

func Default() Config {
	return Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:              "8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Storage: StorageConfig{Driver: DriverMongo},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "companyDB",
			MaxPoolSize:    20,
			ConnectTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads COMPANYDB_* variables over the defaults. The first underscore after
// the prefix separates section and key: COMPANYDB_MONGO_MAX_POOL_SIZE sets
// mongo.max_pool_size.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Mongo.Enabled = cfg.Storage.Driver == DriverMongo
	cfg.Postgres.Enabled = cfg.Storage.Driver == DriverPostgres

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
