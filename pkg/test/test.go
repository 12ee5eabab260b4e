// Package test provides helpers shared by the package tests.
package test

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/migrate"
	"github.com/beartracks/beartracks/pkg/store"
	"github.com/beartracks/beartracks/pkg/store/database"
)

var (
	used = map[int]struct{}{}
	lock sync.Mutex
)

// RandomPort returns a random port number.
// This is mainly used for testing.
func RandomPort() int {
	addr, _ := net.Listen("tcp", ":0") //nolint:gosec
	_ = addr.Close()
	port := addr.Addr().(*net.TCPAddr).Port
	lock.Lock()

	if _, ok := used[port]; ok {
		lock.Unlock()
		return RandomPort()
	}

	used[port] = struct{}{}
	lock.Unlock()
	return port
}

// Catalog opens a migrated temp SQLite database and a store over it. The
// database is closed when the test is done.
func Catalog(ctx context.Context, tb testing.TB) (*db.DB, store.Store) {
	tb.Helper()
	if ctx == nil {
		ctx = context.TODO()
	}

	dsn := filepath.Join(tb.TempDir(), "beartracks.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	dbx, err := db.Open(ctx, "sqlite", dsn)
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() {
		if err := dbx.Close(); err != nil {
			tb.Error(err)
		}
	})

	if err := migrate.Migrate(ctx, dbx); err != nil {
		tb.Fatal(err)
	}

	return dbx, database.New(ctx, dbx)
}
