package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fastprodman/gamebridge/internal/config"
	"github.com/fastprodman/gamebridge/internal/infra/logging"
	"github.com/fastprodman/gamebridge/internal/infra/pgmigrate"
	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/pkg/envconf"
)

//go:embed test_data/*.sql
var devFS embed.FS

// Seed versions live in their own table so they never collide with schema versions.
var devSeed = pgmigrate.Set{FS: devFS, Dir: "test_data", Table: "schema_migrations_seed"}

type migratorConfig struct {
	LogLevel slog.Level    `env:"APP_LOG_LEVEL"           envDefault:"INFO"`
	AppEnv   string        `env:"APP_ENV"                 envDefault:"PROD"`
	Timeout  time.Duration `env:"MIGRATE_CONNECT_TIMEOUT" envDefault:"30s"`
	Postgres config.PostgresConfig
}

func main() {
	err := migrateAll()
	if err != nil {
		slog.Error("migration run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("migration run finished successfully")
}

func migrateAll() error {
	cfg := new(migratorConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel, "gamebridge-migrator")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	//nolint:errcheck
	defer db.Close()

	err = pgmigrate.Up(db, pgmigrate.Schema)
	if err != nil {
		return fmt.Errorf("schema migrations: %w", err)
	}

	slog.Info("schema migrations applied")

	if cfg.AppEnv == "DEV" {
		err = pgmigrate.Up(db, devSeed)
		if err != nil {
			return fmt.Errorf("dev seed migrations: %w", err)
		}

		slog.Info("dev seed migrations applied")
	}

	return nil
}
