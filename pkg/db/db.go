// Package db provides the database handle, transactions and driver error
// normalization for BearTracks.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/beartracks/beartracks/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// DB is the BearTracks database.
type DB struct {
	*sqlx.DB
	logger *log.Logger
}

var _ Handler = (*DB)(nil)

// Open opens a database connection.
func Open(ctx context.Context, driverName string, dsn string) (*DB, error) {
	switch driverName {
	case "sqlite", "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unknown driver %q", driverName)
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, err
	}

	d := &DB{
		DB: db,
	}

	if config.IsVerbose() {
		logger := log.FromContext(ctx).WithPrefix("db")
		d.logger = logger
	}

	return d, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.DB.Close()
}

// Tx is a database transaction.
type Tx struct {
	*sqlx.Tx
	logger *log.Logger
}

var _ Handler = (*Tx)(nil)

// TransactionContext runs fn inside a transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (d *DB) TransactionContext(ctx context.Context, fn func(tx *Tx) error) error {
	txx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := &Tx{txx, d.logger}
	if err := fn(tx); err != nil {
		return rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			// this is ok because whoever did finish the tx should have also written the error already.
			return nil
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func rollback(tx *Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		if errors.Is(rerr, sql.ErrTxDone) {
			return err
		}
		return fmt.Errorf("failed to rollback: %s: %w", err.Error(), rerr)
	}

	return err
}
