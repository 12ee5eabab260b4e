package main

import (
	"encoding/json"
	"fmt"

	"github.com/beartracks/beartracks/cmd"
	"github.com/beartracks/beartracks/pkg/backend"
	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/migrate"
	"github.com/spf13/cobra"
)

var fetchJSON bool

var fetchCmd = &cobra.Command{
	Use:                "fetch",
	Short:              "Ingest the campus events feed once",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		if err := migrate.Migrate(ctx, db.FromContext(ctx)); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}

		res, err := backend.FromContext(ctx).Ingest(ctx)
		if err != nil {
			return err
		}

		if fetchJSON {
			return json.NewEncoder(c.OutOrStdout()).Encode(res)
		}

		c.Printf("fetched %d, ingested %d, skipped %d, failed %d\n",
			res.Fetched, res.Ingested, res.Skipped, res.Failed)
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "output as JSON")
}
