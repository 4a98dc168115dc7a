package versionboard

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// FailurePolicy decides what a failing service does to an aggregation run.
type FailurePolicy string

const (
	// FailFast aborts the run on the first failure. No report is produced,
	// so nothing already published is overwritten.
	FailFast FailurePolicy = "fail-fast"

	// FailureIsolate drops the failing service's rows, records a [Failure]
	// on the report and carries on with the rest of the catalog.
	FailureIsolate FailurePolicy = "isolate"
)

// ParseFailurePolicy parses a policy name as used in configuration.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case FailFast, FailureIsolate:
		return p, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (expected 'fail-fast' or 'isolate')", s)
	}
}

// aggConfig holds mutable state during Aggregator construction.
type aggConfig struct {
	policy           FailurePolicy
	maxConcurrency   int
	engineOrdering   Ordering
	logger           *slog.Logger
	clock            func() time.Time
	generatorVersion string
	title            string
}

// Option configures an [Aggregator] during construction.
//
// Built-in options: [WithFailurePolicy], [WithMaxConcurrency],
// [WithEngineOrdering], [WithLogger], [WithClock], [WithGeneratorVersion],
// [WithTitle].
type Option func(*aggConfig) error

// WithFailurePolicy sets the failure policy. Defaults to [FailFast].
//
// Returns an error for an unknown policy.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(cfg *aggConfig) error {
		if _, err := ParseFailurePolicy(string(p)); err != nil {
			return err
		}
		cfg.policy = p
		return nil
	}
}

// WithMaxConcurrency sets how many catalog entries are processed at the
// same time. Defaults to 1, which processes the catalog strictly in order.
// With a higher value, sources are fetched in parallel and rows are put
// back in catalog order once every entry is done.
//
// Example:
//
//	agg, err := versionboard.NewAggregator(catalog, source,
//	    versionboard.WithMaxConcurrency(4),
//	)
//
// Returns an error if the value is zero or negative.
func WithMaxConcurrency(n int) Option {
	return func(cfg *aggConfig) error {
		if n <= 0 {
			return errors.New("max concurrency must be positive")
		}
		cfg.maxConcurrency = n
		return nil
	}
}

// WithEngineOrdering replaces the ordering of every descriptor that sorts
// with [OrderLexicalDescending]. Use [OrderSemanticDescending] to opt into
// version-aware sorting. Source-ordered descriptors are not affected.
//
// Returns an error for an unknown ordering.
func WithEngineOrdering(o Ordering) Option {
	return func(cfg *aggConfig) error {
		if _, err := ParseOrdering(string(o)); err != nil {
			return err
		}
		cfg.engineOrdering = o
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *aggConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock sets the function used to timestamp reports. Defaults to
// [time.Now].
//
// Returns an error if clock is nil.
func WithClock(clock func() time.Time) Option {
	return func(cfg *aggConfig) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = clock
		return nil
	}
}

// WithGeneratorVersion sets the generator version printed on the page.
func WithGeneratorVersion(v string) Option {
	return func(cfg *aggConfig) error {
		cfg.generatorVersion = v
		return nil
	}
}

// WithTitle sets the report title. Defaults to [DefaultTitle].
func WithTitle(title string) Option {
	return func(cfg *aggConfig) error {
		cfg.title = title
		return nil
	}
}
