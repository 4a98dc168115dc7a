package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/versionboard"
	"github.com/jpalmerr/versionboard/internal/snapshot"
)

// fetchCmd records the raw payload of every catalog source.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Record the raw payload of every source",
	Long: `Fetch every source of the catalog once and write its raw payload to a
directory: API documents as pretty-printed JSON, documentation pages as HTML.

The recorded directory can be fed back with 'generate --from' to rebuild the
page without network access.

Example:
  versionboard fetch --dir snapshots`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("dir", "snapshots", "directory the payloads are written to")
}

func runFetch(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("dir")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := newSource(ctx, cfg, &awsLoader{region: cfg.AWS.Region}, "")
	if err != nil {
		return err
	}
	defer closeSource()

	paths, err := snapshot.NewRecorder(dir, source, logger).Record(ctx, versionboard.DefaultCatalog().Sources())
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
