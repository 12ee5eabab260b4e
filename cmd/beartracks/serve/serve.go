// Package serve implements the serve command.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beartracks/beartracks/cmd"
	"github.com/beartracks/beartracks/pkg/config"
	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/migrate"
	"github.com/spf13/cobra"
)

// ShutdownTimeout bounds the graceful shutdown of the servers.
const ShutdownTimeout = 10 * time.Second

// Command is the serve command.
var Command = &cobra.Command{
	Use:                "serve",
	Short:              "Start the server",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		cfg := config.FromContext(ctx)
		if !cfg.Exist() {
			if err := cfg.WriteConfig(); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}
		}

		if err := migrate.Migrate(ctx, db.FromContext(ctx)); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}

		s, err := NewServer(ctx)
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		lch := make(chan error, 1)
		go func() {
			lch <- s.Start()
		}()

		select {
		case err := <-lch:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		case <-ctx.Done():
		}

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		return s.Shutdown(sctx)
	},
}
