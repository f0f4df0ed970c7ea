package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/gamebridge/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT"             envDefault:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL"        envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	StoreTimeout    time.Duration `env:"APP_STORE_TIMEOUT"    envDefault:"5s"`
	RequestTimeout  time.Duration `env:"APP_REQUEST_TIMEOUT"  envDefault:"10s"`
	CORSOrigins     []string      `env:"APP_CORS_ORIGINS"     envDefault:"*"`
	// CatalogPath replaces the built-in catalog when set.
	CatalogPath string `env:"CATALOG_PATH" envDefault:""`

	Postgres config.PostgresConfig
	Pairing  config.PairingConfig
	Access   config.AccessConfig
}
