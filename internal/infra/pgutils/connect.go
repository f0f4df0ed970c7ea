package pgutils

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

// OpenDB opens a pool with the configured limits and waits for the first ping.
// A ping failure caused by ctx is reported as transient.
func OpenDB(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	applyPoolLimits(db, cfg)

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, Classify(fmt.Errorf("ping postgres: %w", err))
	}

	return db, nil
}

func applyPoolLimits(db *sql.DB, cfg config.PostgresConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}
