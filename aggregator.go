package versionboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTitle is the report title used when none is configured.
	DefaultTitle = "Amazon Managed Services versions"

	// DefaultGeneratorVersion is printed on reports built without
	// [WithGeneratorVersion].
	DefaultGeneratorVersion = "dev"
)

// Aggregator drives the extraction pipeline across a [Catalog].
//
// For each descriptor, in catalog order, it resolves the descriptor's
// payload, runs its extractor, validates and sorts the result and formats
// one [ReportRow] per version. Every distinct source is fetched at most
// once per run, however many descriptors read it.
//
// An Aggregator holds no state between runs and is safe for concurrent use.
type Aggregator struct {
	catalog          Catalog
	source           Source
	policy           FailurePolicy
	maxConcurrency   int
	engineOrdering   Ordering
	logger           *slog.Logger
	clock            func() time.Time
	generatorVersion string
	title            string
}

// NewAggregator creates an [Aggregator] over catalog, reading payloads from
// source.
//
// Defaults:
//   - Failure policy: [FailFast]
//   - Max concurrency: 1 (sequential)
//   - Engine ordering: as declared by each descriptor
//   - Logger: [slog.Default]
//
// Returns an error if source is nil or any option is invalid.
func NewAggregator(catalog Catalog, source Source, opts ...Option) (*Aggregator, error) {
	if source == nil {
		return nil, errors.New("source cannot be nil")
	}
	if len(catalog.descriptors) == 0 {
		return nil, errors.New("catalog has no services")
	}

	cfg := &aggConfig{
		policy:           FailFast,
		maxConcurrency:   1,
		clock:            time.Now,
		generatorVersion: DefaultGeneratorVersion,
		title:            DefaultTitle,
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

	return &Aggregator{
		catalog:          catalog,
		source:           source,
		policy:           cfg.policy,
		maxConcurrency:   cfg.maxConcurrency,
		engineOrdering:   cfg.engineOrdering,
		logger:           logger,
		clock:            cfg.clock,
		generatorVersion: cfg.generatorVersion,
		title:            cfg.title,
	}, nil
}

// Run aggregates the whole catalog into a [Report].
//
// Under [FailFast] the first failure is returned, wrapped in a
// [*ServiceError], and the report is nil. Under [FailureIsolate] failing
// services are listed in [Report.Failures] and Run only returns an error if
// ctx is cancelled.
//
// Row order is the catalog order, whatever the concurrency.
func (a *Aggregator) Run(ctx context.Context) (*Report, error) {
	descriptors := a.catalog.descriptors
	groups := make([][]ReportRow, len(descriptors))
	failures := make([]*Failure, len(descriptors))
	payloads := newPayloadCache(a.source)

	process := func(ctx context.Context, i int) error {
		d := descriptors[i]
		rows, err := a.processDescriptor(ctx, payloads, d)
		if err == nil {
			groups[i] = rows
			return nil
		}

		err = &ServiceError{Service: d.name, Err: err}
		if a.policy == FailFast || ctx.Err() != nil {
			return err
		}
		a.logger.Warn("service skipped", "service", d.name, "error", err.Error())
		failures[i] = &Failure{Service: d.name, Err: err}
		return nil
	}

	if a.maxConcurrency <= 1 {
		for i := range descriptors {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := process(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.maxConcurrency)
		for i := range descriptors {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return process(gctx, i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Title:            a.title,
		GeneratedAt:      a.clock(),
		GeneratorVersion: a.generatorVersion,
	}
	for i := range descriptors {
		report.Rows = append(report.Rows, groups[i]...)
		if failures[i] != nil {
			report.Failures = append(report.Failures, *failures[i])
		}
	}
	return report, nil
}

// processDescriptor runs the pipeline for one catalog entry.
func (a *Aggregator) processDescriptor(ctx context.Context, payloads *payloadCache, d ServiceDescriptor) ([]ReportRow, error) {
	a.logger.Info("Fetching "+d.name, "service", d.name, "source", d.source.ID)

	payload, err := payloads.get(ctx, d.source)
	if err != nil {
		return nil, err
	}

	if d.fanOut == nil {
		versions, err := a.extract(d.name, d.extractor, payload, d.ordering)
		if err != nil {
			return nil, err
		}
		return a.formatRows(d.name, d.engineKey, versions), nil
	}

	keys, err := a.extract(d.name, d.fanOut.keys, payload, OrderSource)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	var rows []ReportRow
	for _, key := range keys {
		label := d.name + " " + key
		ex := d.fanOut.perKey(key)
		if ex == nil || ex.Kind() != d.source.Kind {
			return nil, fmt.Errorf("%s: no %s extractor for key %q", label, d.source.Kind, key)
		}
		a.logger.Info("Fetching "+label, "service", label, "engine", key, "source", d.source.ID)
		versions, err := a.extract(label, ex, payload, d.ordering)
		if err != nil {
			return nil, err
		}
		rows = append(rows, a.formatRows(label, key, versions)...)
	}
	return rows, nil
}

// extract runs an extractor, then the validator, then the sorter.
func (a *Aggregator) extract(service string, ex Extractor, payload RawPayload, ordering Ordering) ([]string, error) {
	raw, err := a.safeExtract(ex, payload)
	if err != nil {
		return nil, err
	}
	versions, err := Validate(raw)
	if err != nil {
		return nil, &EmptyResultError{Service: service}
	}
	if ordering == OrderLexicalDescending && a.engineOrdering != "" {
		ordering = a.engineOrdering
	}
	return SortVersions(versions, ordering), nil
}

// safeExtract calls the extractor with panic recovery. A panic is logged
// with its stack under a correlation ID and turned into a [*ParseError].
func (a *Aggregator) safeExtract(ex Extractor, payload RawPayload) (versions []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			a.logger.Error("extractor panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			versions = nil
			err = &ParseError{Rule: ruleOf(ex), Reason: "extractor panic (correlation_id: " + correlationID + ")"}
		}
	}()
	return ex.Extract(payload)
}

func (a *Aggregator) formatRows(service, engineKey string, versions []string) []ReportRow {
	rows := make([]ReportRow, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, FormatRow(a.catalog.docs, service, v, engineKey))
	}
	return rows
}

func ruleOf(ex Extractor) string {
	if r, ok := ex.(interface{ Rule() string }); ok {
		return r.Rule()
	}
	return fmt.Sprintf("%T", ex)
}

// payloadCache fetches each source at most once per run. Concurrent callers
// asking for the same source wait for the first fetch.
type payloadCache struct {
	source  Source
	mu      sync.Mutex
	entries map[string]*payloadEntry
}

type payloadEntry struct {
	once    sync.Once
	payload RawPayload
	err     error
}

func newPayloadCache(source Source) *payloadCache {
	return &payloadCache{
		source:  source,
		entries: make(map[string]*payloadEntry),
	}
}

func (c *payloadCache) get(ctx context.Context, ref SourceRef) (RawPayload, error) {
	c.mu.Lock()
	e, ok := c.entries[ref.ID]
	if !ok {
		e = &payloadEntry{}
		c.entries[ref.ID] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		payload, err := c.source.Fetch(ctx, ref)
		if err != nil {
			var te *TransportError
			if !errors.As(err, &te) {
				err = &TransportError{Source: ref.ID, Err: err}
			}
			e.err = err
			return
		}
		e.payload = payload
	})
	return e.payload, e.err
}
