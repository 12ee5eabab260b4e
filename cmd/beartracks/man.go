package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:    "man",
	Short:  "Generate man pages",
	Args:   cobra.NoArgs,
	Hidden: true,
	RunE: func(c *cobra.Command, _ []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return err
		}

		manPage = manPage.WithSection("Environment",
			"Every configuration value can be set with a BEARTRACKS_ prefixed variable, "+
				"for example BEARTRACKS_DB_DRIVER or BEARTRACKS_FEED_URL.")
		fmt.Fprintln(c.OutOrStdout(), manPage.Build(roff.NewDocument()))
		return nil
	},
}
