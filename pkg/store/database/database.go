// Package database implements the catalog store on top of SQL.
package database

import (
	"context"
	"database/sql"

	"github.com/beartracks/beartracks/pkg/config"
	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/store"
	"github.com/charmbracelet/log"
)

type datastore struct {
	ctx    context.Context
	cfg    *config.Config
	db     *db.DB
	logger *log.Logger

	*organizationStore
	*eventStore
	*userStore
	*attendanceStore
}

// New returns a new store.Store database.
func New(ctx context.Context, db *db.DB) store.Store {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("store")

	s := &datastore{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		logger: logger,

		organizationStore: &organizationStore{},
		eventStore:        &eventStore{},
		userStore:         &userStore{},
		attendanceStore:   &attendanceStore{},
	}

	return s
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
