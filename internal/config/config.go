// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	MongoURI    string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDBName string `env:"MONGO_DB_NAME" envDefault:"storefront"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	CatalogDBPath         string `env:"CATALOG_DB_PATH" envDefault:"storefront.db"`
	CatalogMigrationsPath string `env:"CATALOG_MIGRATIONS_PATH" envDefault:"internal/catalog/migrations"`

	OrdersDBHost         string `env:"ORDERS_DB_HOST" envDefault:"localhost"`
	OrdersDBPort         int    `env:"ORDERS_DB_PORT" envDefault:"5432"`
	OrdersDBUser         string `env:"ORDERS_DB_USER" envDefault:"postgres"`
	OrdersDBPassword     string `env:"ORDERS_DB_PASSWORD" envDefault:"postgres"`
	OrdersDBName         string `env:"ORDERS_DB_NAME" envDefault:"storefront_orders"`
	OrdersMigrationsPath string `env:"ORDERS_MIGRATIONS_PATH" envDefault:"internal/orders/migrations"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`

	FreeShippingThreshold float64 `env:"FREE_SHIPPING_THRESHOLD" envDefault:"1000"`
	Currency              string  `env:"CURRENCY" envDefault:"USD"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
