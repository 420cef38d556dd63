package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for uciscope.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uciscope",
		Short: "Focused crawler for the uci.edu department sites",
		Long: `uciscope is a focused web crawler for the uci.edu department sites.

It canonicalizes every discovered URL, keeps the crawl inside the allowed
domains, drops exact and near duplicate pages, throttles crawler traps
(calendars, wikis, faceted listings) and reports crawl statistics.

Crawl results are stored in a SQLite database so that past crawls can be
shown and compared without crawling again.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
