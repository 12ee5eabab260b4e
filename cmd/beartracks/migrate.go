package main

import (
	"fmt"

	"github.com/beartracks/beartracks/cmd"
	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/migrate"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		Use:                "migrate",
		Short:              "Apply pending database migrations",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			dbx := db.FromContext(ctx)
			if err := migrate.Migrate(ctx, dbx); err != nil {
				return fmt.Errorf("migration error: %w", err)
			}
			return printVersion(c, dbx)
		},
	}

	rollbackCmd = &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the latest database migration",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			dbx := db.FromContext(ctx)
			if err := migrate.Rollback(ctx, dbx); err != nil {
				return fmt.Errorf("rollback error: %w", err)
			}
			return printVersion(c, dbx)
		},
	}
)

func init() {
	migrateCmd.AddCommand(rollbackCmd)
}

func printVersion(c *cobra.Command, dbx *db.DB) error {
	v, err := migrate.Version(c.Context(), dbx)
	if err != nil {
		return err
	}
	c.Printf("database at version %d\n", v)
	return nil
}
