package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/versionboard"
	"github.com/jpalmerr/versionboard/config"
)

// generateCmd builds the page once and publishes it.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build the versions page and publish it",
	Long: `Build the versions page once and publish it.

Every service of the catalog is read, validated and sorted. With the default
fail-fast policy any failure aborts the run before anything is published, so
the previously published page stays in place. When notify.topic_arn is set
the failure is also sent to SNS.

Example:
  versionboard generate -c versionboard.yaml
  versionboard generate --from snapshots --stdout > index.html`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("output-file", "", "object key / file name of the page (overrides output.file)")
	generateCmd.Flags().String("from", "", "read payloads recorded by 'fetch' from this directory")
	generateCmd.Flags().Bool("stdout", false, "write the page to stdout instead of publishing it")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("output-file"); name != "" {
		cfg.Output.File = name
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	from, _ := cmd.Flags().GetString("from")
	toStdout, _ := cmd.Flags().GetBool("stdout")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := &awsLoader{region: cfg.AWS.Region}
	notifier, err := newNotifier(ctx, cfg, loader, logger)
	if err != nil {
		return err
	}

	page, err := buildPage(ctx, cfg, loader, logger, from)
	if err != nil {
		logger.Error("generation failed", "error", err.Error())
		if nerr := notifier.NotifyFailure(context.WithoutCancel(ctx), err); nerr != nil {
			logger.Error("failure notification failed", "error", nerr.Error())
		}
		return err
	}

	if toStdout {
		_, err := cmd.OutOrStdout().Write(page)
		return err
	}

	publisher, err := newPublisher(ctx, cfg, loader, logger)
	if err != nil {
		return err
	}
	if err := publisher.Publish(ctx, cfg.Output.File, page); err != nil {
		logger.Error("publish failed", "error", err.Error())
		if nerr := notifier.NotifyFailure(context.WithoutCancel(ctx), err); nerr != nil {
			logger.Error("failure notification failed", "error", nerr.Error())
		}
		return err
	}
	return nil
}

// buildPage runs the aggregator and renders the page.
func buildPage(ctx context.Context, cfg *config.Config, loader *awsLoader, logger *slog.Logger, from string) ([]byte, error) {
	source, closeSource, err := newSource(ctx, cfg, loader, from)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	agg, err := newAggregator(cfg, source, logger)
	if err != nil {
		return nil, err
	}
	report, err := agg.Run(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range report.Failures {
		logger.Warn("service left out of the page", "service", f.Service, "error", f.Err.Error())
	}

	page, err := versionboard.RenderPageBytes(report)
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	logger.Info("page generated", "rows", len(report.Rows), "skipped", len(report.Failures), "bytes", len(page))
	return page, nil
}
