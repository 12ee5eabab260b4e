package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/beartracks/beartracks/cmd/beartracks/serve"
	"github.com/beartracks/beartracks/pkg/config"
	logr "github.com/beartracks/beartracks/pkg/log"
	"github.com/beartracks/beartracks/pkg/version"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	// CommitDate contains the date of the commit that this application was
	// built against. It's set via ldflags when building.
	CommitDate = ""

	rootCmd = &cobra.Command{
		Use:          "beartracks",
		Short:        "Campus events catalog with Google Calendar RSVPs",
		Long:         "BearTracks ingests the campus events feed into a catalog and mirrors RSVPs into Google Calendar.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.AddCommand(
		serve.Command,
		fetchCmd,
		migrateCmd,
		manCmd,
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version

	version.Version = Version
	version.CommitSHA = CommitSHA
	version.CommitDate = CommitDate
}

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	if cfg.Exist() {
		if err := cfg.ParseFile(); err != nil {
			log.Error("parse config file", "err", err)
			return err
		}
	}
	if err := cfg.ParseEnv(); err != nil {
		log.Error("parse environment variables", "err", err)
		return err
	}
	ctx = config.WithContext(ctx, cfg)

	logger, f, err := logr.NewLogger(cfg)
	if err != nil {
		log.Error("create logger", "err", err)
		return fmt.Errorf("create logger: %w", err)
	}
	if f != nil {
		defer f.Close() //nolint:errcheck
	}

	// Set global logger
	log.SetDefault(logger)

	// Set the max number of processes to the number of CPUs
	// This is useful when running in a container
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warn("couldn't set automaxprocs", "error", err)
	}

	ctx = log.WithContext(ctx, logger)

	return rootCmd.ExecuteContext(ctx)
}
