// Package test provides testing utilities for database operations.
package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/beartracks/beartracks/pkg/db"
)

// OpenSqlite opens a new temp SQLite database for testing with foreign keys
// enabled. It closes the database when the test is done using tb.Cleanup.
// If ctx is nil, context.TODO() is used.
func OpenSqlite(ctx context.Context, tb testing.TB) (*db.DB, error) {
	if ctx == nil {
		ctx = context.TODO()
	}
	dbpath := filepath.Join(tb.TempDir(), "test.db")
	dsn := dbpath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	dbx, err := db.Open(ctx, "sqlite", dsn)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	tb.Cleanup(func() {
		if err := dbx.Close(); err != nil {
			tb.Error(err)
		}
	})
	return dbx, nil
}
