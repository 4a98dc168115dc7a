package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/versionboard"
)

// validateCmd validates a config file without generating anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a versionboard configuration file without generating the page.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  versionboard validate -c versionboard.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("config"); path == "" {
		return fmt.Errorf("--config is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	destination := "none"
	switch {
	case cfg.Output.LocalPath != "":
		destination = cfg.Output.LocalPath
	case cfg.Output.Bucket != "":
		destination = "s3://" + cfg.Output.Bucket
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Output:          %s/%s\n", destination, cfg.Output.File)
	fmt.Fprintf(out, "  Failure policy:  %s\n", cfg.Generation.FailurePolicy)
	fmt.Fprintf(out, "  Ordering:        %s\n", cfg.Generation.Ordering)
	fmt.Fprintf(out, "  Max concurrency: %d\n", cfg.Generation.MaxConcurrency)
	fmt.Fprintf(out, "  Services:        %d\n", len(versionboard.DefaultCatalog().Descriptors()))
	return nil
}
