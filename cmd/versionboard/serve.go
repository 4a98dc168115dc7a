package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/versionboard"
	"github.com/jpalmerr/versionboard/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd regenerates the page on an interval and serves it.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Regenerate the page on an interval and serve it",
	Long: `Run versionboard as a long-lived service.

The server will:
  - Generate the page immediately, then every serve.interval
  - Serve the latest page on / and the rows on /api/rows
  - Stream every regeneration on /api/sse
  - Expose Prometheus metrics on /metrics
  - Publish each new page when an output is configured

A failed regeneration keeps the previous page. The server runs until
interrupted (Ctrl+C) or receives SIGTERM.

Example:
  versionboard serve -c versionboard.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("from", "", "read payloads recorded by 'fetch' from this directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	from, _ := cmd.Flags().GetString("from")

	logger.Info("starting server",
		"port", cfg.Serve.Port,
		"interval", cfg.Serve.Interval.Duration().String(),
		"failure_policy", cfg.Generation.FailurePolicy,
	)

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := &awsLoader{region: cfg.AWS.Region}
	source, closeSource, err := newSource(ctx, cfg, loader, from)
	if err != nil {
		return err
	}
	defer closeSource()

	agg, err := newAggregator(cfg, source, logger)
	if err != nil {
		return err
	}
	notifier, err := newNotifier(ctx, cfg, loader, logger)
	if err != nil {
		return err
	}

	opts := config.BoardOptions(cfg, logger)
	opts = append(opts, versionboard.WithErrorCallback(func(err error) {
		if nerr := notifier.NotifyFailure(context.WithoutCancel(ctx), err); nerr != nil {
			logger.Error("failure notification failed", "error", nerr.Error())
		}
	}))
	if cfg.HasDestination() {
		publisher, err := newPublisher(ctx, cfg, loader, logger)
		if err != nil {
			return err
		}
		opts = append(opts, versionboard.WithReportCallback(func(report *versionboard.Report) {
			page, err := versionboard.RenderPageBytes(report)
			if err == nil {
				err = publisher.Publish(ctx, cfg.Output.File, page)
			}
			if err != nil {
				logger.Error("publish failed", "error", err.Error())
				if nerr := notifier.NotifyFailure(context.WithoutCancel(ctx), err); nerr != nil {
					logger.Error("failure notification failed", "error", nerr.Error())
				}
			}
		}))
	}

	board, err := versionboard.NewBoard(agg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- board.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
