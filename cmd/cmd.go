// Package cmd holds helpers shared by the beartracks commands.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/beartracks/beartracks/pkg/backend"
	"github.com/beartracks/beartracks/pkg/config"
	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/store"
	"github.com/beartracks/beartracks/pkg/store/database"
	"github.com/spf13/cobra"
)

// InitBackendContext opens the database and attaches it, the store and the
// backend to the command context.
func InitBackendContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return config.ErrNilConfig
	}
	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	dbx, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DataSource)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	ctx = db.WithContext(ctx, dbx)
	dbstore := database.New(ctx, dbx)
	ctx = store.WithContext(ctx, dbstore)
	be := backend.New(ctx, cfg, dbx, dbstore)
	ctx = backend.WithContext(ctx, be)

	cmd.SetContext(ctx)

	return nil
}

// CloseDBContext waits for background calendar work and closes the
// database.
func CloseDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if be := backend.FromContext(ctx); be != nil {
		be.Wait()
	}

	dbx := db.FromContext(ctx)
	if dbx != nil {
		if err := dbx.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}
