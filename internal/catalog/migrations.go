package catalog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrateSchema applies every pending migration in migrations/ to dsn,
// creating resultpush_tables/resultpush_table_columns (and any later
// revision of them) for a PostgresStore to read from. Grounded on the
// teacher's own direct dependency on golang-migrate/migrate/v4
// (apps/metadata-api-go/go.mod); no file in the retrieval pack exercises
// it, so the source/database driver wiring here follows the library's own
// documented iofs+postgres invocation rather than a specific teacher call
// site.
func MigrateSchema(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("catalog: opening migration connection: %w", err)
	}
	defer db.Close()

	sourceDriver, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("catalog: loading embedded migrations: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("catalog: creating postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("catalog: initializing migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("catalog: applying migrations: %w", err)
	}
	return nil
}
