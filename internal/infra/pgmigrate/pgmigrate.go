// Package pgmigrate applies the embedded schema with golang-migrate.
package pgmigrate

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Set is one directory of numbered migrations tracked in its own table.
type Set struct {
	FS  fs.FS
	Dir string
	// Table defaults to golang-migrate's schema_migrations.
	Table string
}

// Schema is the application schema.
var Schema = Set{FS: schemaFS, Dir: "schema"}

// Up applies every pending migration of set. An up-to-date database is not an error.
func Up(db *sql.DB, set Set) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: set.Table})
	if err != nil {
		return fmt.Errorf("init postgres driver: %w", err)
	}

	src, err := iofs.New(set.FS, set.Dir)
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up %s: %w", set.Dir, err)
	}

	return nil
}
