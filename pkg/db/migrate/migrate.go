// Package migrate provides database schema migrations.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/charmbracelet/log"
)

const (
	driverSQLite   = "sqlite"
	driverSQLite3  = "sqlite3"
	driverPostgres = "postgres"
)

// MigrateFunc is a function that executes a migration.
type MigrateFunc func(ctx context.Context, h db.Handler) error //nolint:revive

// Migration is a struct that contains the name of the migration and the
// function to execute it.
type Migration struct {
	Version  int64
	Name     string
	Migrate  MigrateFunc
	Rollback MigrateFunc
}

// Migrations is a database model to store migrations.
type Migrations struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Version int64  `db:"version"`
}

func (Migrations) schema(driverName string) string {
	switch driverName {
	case driverSQLite3, driverSQLite:
		return `CREATE TABLE IF NOT EXISTS migrations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				version INTEGER NOT NULL UNIQUE
			);
		`
	case driverPostgres:
		return `CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			version INTEGER NOT NULL UNIQUE
		);
	`
	default:
		panic("unknown driver")
	}
}

// Migrate runs all pending migrations.
func Migrate(ctx context.Context, dbx *db.DB) error {
	logger := log.FromContext(ctx).WithPrefix("migrate")
	return dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		if !hasTable(ctx, tx, "migrations") {
			if _, err := tx.ExecContext(ctx, Migrations{}.schema(tx.DriverName())); err != nil {
				return err
			}
		}

		current, err := latest(ctx, tx)
		if err != nil {
			return err
		}

		for _, m := range migrations {
			if m.Version <= current.Version {
				continue
			}

			logger.Infof("running migration %d. %s", m.Version, m.Name)
			if err := m.Migrate(ctx, tx); err != nil {
				return fmt.Errorf("migration %d: %w", m.Version, err)
			}

			if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO migrations (name, version) VALUES (?, ?)"), m.Name, m.Version); err != nil {
				return err
			}
		}

		return nil
	})
}

// Rollback rolls back the most recent migration.
func Rollback(ctx context.Context, dbx *db.DB) error {
	logger := log.FromContext(ctx).WithPrefix("migrate")
	return dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		if !hasTable(ctx, tx, "migrations") {
			return fmt.Errorf("there are no migrations to rollback")
		}

		current, err := latest(ctx, tx)
		if err != nil {
			return err
		}

		if current.Version == 0 || len(migrations) < int(current.Version) {
			return fmt.Errorf("there are no migrations to rollback")
		}

		m := migrations[current.Version-1]
		logger.Infof("rolling back migration %d. %s", m.Version, m.Name)
		if err := m.Rollback(ctx, tx); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM migrations WHERE version = ?"), current.Version); err != nil {
			return err
		}

		return nil
	})
}

// Version returns the version of the most recently applied migration, or
// zero when none have run.
func Version(ctx context.Context, dbx *db.DB) (int64, error) {
	if !hasTable(ctx, dbx, "migrations") {
		return 0, nil
	}
	m, err := latest(ctx, dbx)
	return m.Version, err
}

func latest(ctx context.Context, h db.Handler) (Migrations, error) {
	var migrs Migrations
	if err := h.GetContext(ctx, &migrs, "SELECT * FROM migrations ORDER BY version DESC LIMIT 1"); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return migrs, err
		}
	}
	return migrs, nil
}

func hasTable(ctx context.Context, h db.Handler, tableName string) bool {
	var query string
	switch h.DriverName() {
	case driverSQLite3, driverSQLite:
		query = "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
	case driverPostgres:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?"
	}

	query = h.Rebind(query)
	var name string
	err := h.GetContext(ctx, &name, query, tableName)
	return err == nil
}
