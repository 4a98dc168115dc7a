package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/versionboard"
	"github.com/jpalmerr/versionboard/internal/fetch"
	"github.com/jpalmerr/versionboard/internal/linkcheck"
)

const checkConcurrency = 8

// checkURLsCmd probes every documentation link of the catalog.
var checkURLsCmd = &cobra.Command{
	Use:   "check-urls",
	Short: "Check the documentation links of the catalog",
	Long: `Probe every documentation link used by the page, without following
redirects, and print one line per link. Links that answer anything other
than 200 are logged as warnings.

With --strict the command exits 1 when a link is broken.

Example:
  versionboard check-urls --strict`,
	RunE: runCheckURLs,
}

func init() {
	rootCmd.AddCommand(checkURLsCmd)

	checkURLsCmd.Flags().Bool("strict", false, "exit with an error when a link is broken")
}

func runCheckURLs(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	strict, _ := cmd.Flags().GetBool("strict")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := fetch.NewClient(cfg.Generation.HTTPTimeout.Duration())
	defer client.Close()

	results, err := linkcheck.NewChecker(client, checkConcurrency, logger).
		Check(ctx, versionboard.DefaultDocumentationIndex())
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintln(cmd.OutOrStdout(), r.String())
	}

	if failed := linkcheck.Failed(results); strict && len(failed) > 0 {
		return fmt.Errorf("%d of %d links are broken", len(failed), len(results))
	}
	return nil
}
