package migrate

import (
	"context"

	"github.com/beartracks/beartracks/pkg/db"
)

const (
	createEventIndexesName    = "create event indexes"
	createEventIndexesVersion = 2
)

var createEventIndexes = Migration{
	Version: createEventIndexesVersion,
	Name:    createEventIndexesName,
	Migrate: func(ctx context.Context, h db.Handler) error {
		return migrateUp(ctx, h, createEventIndexesVersion, createEventIndexesName)
	},
	Rollback: func(ctx context.Context, h db.Handler) error {
		return migrateDown(ctx, h, createEventIndexesVersion, createEventIndexesName)
	},
}
