// Package main is the entry point for the versionboard CLI.
//
// versionboard collects the versions offered by AWS managed services and
// publishes them as a single searchable page.
//
// Usage:
//
//	versionboard generate -c config.yaml      # Build and publish the page once
//	versionboard fetch --dir snapshots        # Record raw source payloads
//	versionboard generate --from snapshots    # Rebuild the page offline
//	versionboard serve -c config.yaml         # Regenerate on an interval and serve
//	versionboard check-urls                   # Check documentation links
//	versionboard validate -c config.yaml      # Validate configuration
//	versionboard version                      # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/versionboard/config"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "versionboard",
	Short: "Aggregate the versions offered by AWS managed services",
	Long: `versionboard lists the engine and runtime versions offered by AWS managed
services (RDS, ElastiCache, MQ, MSK, OpenSearch, Lightsail, Elastic Beanstalk,
EKS, Lambda, Keyspaces) and publishes them as one searchable HTML page.

Versions come from the AWS APIs where one exists and from the AWS
documentation pages otherwise. AWS credentials are resolved the usual way
(environment, shared config, instance role).

Quick start:
  1. Run: versionboard generate --stdout > index.html
  2. Or publish: versionboard generate -c versionboard.yaml

Example config:
  output:
    bucket: my-versions-bucket
  aws:
    region: eu-west-1`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this versionboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "versionboard %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (defaults apply when omitted)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
}

// newLogger creates a JSON logger on stderr for CLI use.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelName, _ := cmd.Flags().GetString("log-level")

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(levelName))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", levelName)
	}

	return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})), nil
}

// loadConfig loads the file named by --config, or the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
