package config

import (
	"log/slog"

	"github.com/jpalmerr/versionboard"
)

// AggregatorOptions converts the generation settings into SDK options.
func AggregatorOptions(cfg *Config, logger *slog.Logger, version string) ([]versionboard.Option, error) {
	policy, err := versionboard.ParseFailurePolicy(cfg.Generation.FailurePolicy)
	if err != nil {
		return nil, err
	}

	opts := []versionboard.Option{
		versionboard.WithFailurePolicy(policy),
		versionboard.WithMaxConcurrency(cfg.Generation.MaxConcurrency),
	}

	// lexical is what descriptors already declare
	if cfg.Generation.Ordering == "semantic" {
		opts = append(opts, versionboard.WithEngineOrdering(versionboard.OrderSemanticDescending))
	}
	if cfg.Generation.Title != "" {
		opts = append(opts, versionboard.WithTitle(cfg.Generation.Title))
	}
	if version != "" {
		opts = append(opts, versionboard.WithGeneratorVersion(version))
	}
	if logger != nil {
		opts = append(opts, versionboard.WithLogger(logger))
	}
	return opts, nil
}

// BoardOptions converts the serve settings into SDK options.
func BoardOptions(cfg *Config, logger *slog.Logger) []versionboard.BoardOption {
	opts := []versionboard.BoardOption{
		versionboard.WithPort(cfg.Serve.Port),
		versionboard.WithInterval(cfg.Serve.Interval.Duration()),
	}
	if logger != nil {
		opts = append(opts, versionboard.WithBoardLogger(logger))
	}
	return opts
}
