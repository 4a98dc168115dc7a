package versionboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/versionboard/internal/server"
	"github.com/jpalmerr/versionboard/internal/store"
)

const (
	defaultBoardPort     = 8080
	defaultBoardInterval = time.Hour
)

// Board regenerates the version report on an interval and serves the latest
// one over HTTP.
//
// The typical lifecycle is:
//
//	board, err := versionboard.NewBoard(agg, versionboard.WithPort(8080))
//	if err != nil {
//	    slog.Error("failed to create board", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	board.Start(ctx) // blocks until context cancelled
//
// Only successful generations replace the served report; after a failure
// the previous report stays up.
type Board struct {
	aggregator      *Aggregator
	port            int
	interval        time.Duration
	logger          *slog.Logger
	reportCallbacks []func(*Report)
	errorCallbacks  []func(error)
}

// NewBoard creates a [Board] over agg.
//
// Defaults:
//   - Port: 8080
//   - Interval: 1 hour
//
// Returns an error if agg is nil or any option is invalid.
func NewBoard(agg *Aggregator, opts ...BoardOption) (*Board, error) {
	if agg == nil {
		return nil, errors.New("aggregator cannot be nil")
	}

	cfg := &boardConfig{
		port:     defaultBoardPort,
		interval: defaultBoardInterval,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Board{
		aggregator:      agg,
		port:            cfg.port,
		interval:        cfg.interval,
		logger:          logger,
		reportCallbacks: cfg.reportCallbacks,
		errorCallbacks:  cfg.errorCallbacks,
	}, nil
}

// Port returns the configured HTTP port.
func (b *Board) Port() int {
	return b.port
}

// Interval returns the configured time between regenerations.
func (b *Board) Interval() time.Duration {
	return b.interval
}

// Start serves the report and regenerates it immediately, then at every
// interval.
//
// Start blocks until ctx is cancelled. Returns nil on graceful shutdown and
// an error if the HTTP server fails to start.
func (b *Board) Start(ctx context.Context) error {
	b.logger.Info("versionboard starting", "interval", b.interval.String())
	b.logger.Info("report available", "url", fmt.Sprintf("http://localhost:%d", b.port))

	if ctx.Err() != nil {
		return nil
	}

	registry := prometheus.NewRegistry()
	metrics := server.NewMetrics(registry)
	reportStore := store.NewMemoryStore()

	httpServer := server.NewServer(reportStore, b.port, registry, b.logger)
	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	b.refresh(ctx, reportStore, metrics)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("versionboard stopped")
			return nil
		case <-ticker.C:
			b.refresh(ctx, reportStore, metrics)
		}
	}
}

// refresh runs one generation and records its outcome.
func (b *Board) refresh(ctx context.Context, st store.Store, metrics *server.Metrics) {
	start := time.Now()

	report, err := b.aggregator.Run(ctx)
	var page []byte
	if err == nil {
		page, err = RenderPageBytes(report)
	}
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		b.logger.Error("report generation failed", "error", err.Error(), "duration_ms", elapsed.Milliseconds())
		metrics.ObserveFailure(elapsed)
		st.RecordFailure(time.Now(), err)
		for _, cb := range b.errorCallbacks {
			invokeCallbackSafe(b.logger, "error", func() { cb(err) })
		}
		return
	}

	st.Update(toStoreReport(report, page))
	metrics.ObserveSuccess(elapsed, len(report.Rows), len(report.Failures))
	b.logger.Info("report generated",
		"rows", len(report.Rows),
		"skipped", len(report.Failures),
		"duration_ms", elapsed.Milliseconds(),
	)

	for _, cb := range b.reportCallbacks {
		invokeCallbackSafe(b.logger, "report", func() { cb(report) })
	}
}

// toStoreReport converts a report to its storage representation.
func toStoreReport(r *Report, page []byte) store.Report {
	rows := make([]store.Row, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = store.Row{Service: row.Service, Version: row.Version, DocURL: row.DocURL}
	}

	var failures []store.Failure
	for _, f := range r.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		failures = append(failures, store.Failure{Service: f.Service, Error: msg})
	}

	return store.Report{
		Title:            r.Title,
		GeneratedAt:      r.GeneratedAt,
		GeneratorVersion: r.GeneratorVersion,
		Rows:             rows,
		Failures:         failures,
		Page:             page,
	}
}

// invokeCallbackSafe calls fn with panic recovery. Panics are logged but do
// not propagate.
func invokeCallbackSafe(logger *slog.Logger, kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("callback panicked", "callback", kind, "panic", r)
		}
	}()
	fn()
}
