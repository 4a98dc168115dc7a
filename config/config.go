// Package config provides YAML configuration parsing for versionboard.
//
// The catalog of services, extraction rules and documentation links are
// built into the binary. The configuration file only holds runtime
// settings: where the page goes, which AWS region to query, how failures
// are reported and how generation behaves.
//
// Example configuration:
//
//	output:
//	  bucket: ${VERSIONS_BUCKET}
//	  file: index.html
//
//	aws:
//	  region: eu-west-1
//
//	notify:
//	  topic_arn: ${ALERTS_TOPIC:-}
//
//	generation:
//	  failure_policy: fail-fast
//	  max_concurrency: 4
//
//	serve:
//	  port: 8080
//	  interval: 1h
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by [Parse].
const (
	DefaultFile           = "index.html"
	DefaultStorageClass   = "STANDARD_IA"
	DefaultTagKey         = "project"
	DefaultTagValue       = "aws-managed-services-versions"
	DefaultFailurePolicy  = "fail-fast"
	DefaultOrdering       = "lexical"
	DefaultMaxConcurrency = 1
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultPort           = 8080
	DefaultServeInterval  = time.Hour
)

// minServeInterval keeps serve mode from hammering the AWS APIs.
const minServeInterval = time.Minute

const maxConcurrency = 32

// storageClasses are the S3 storage classes accepted for the page.
var storageClasses = map[string]bool{
	"STANDARD":            true,
	"STANDARD_IA":         true,
	"ONEZONE_IA":          true,
	"INTELLIGENT_TIERING": true,
	"REDUCED_REDUNDANCY":  true,
}

// Config is the root configuration structure.
//
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	Output     OutputConfig     `yaml:"output"`
	AWS        AWSConfig        `yaml:"aws"`
	CDN        CDNConfig        `yaml:"cdn"`
	Notify     NotifyConfig     `yaml:"notify"`
	Generation GenerationConfig `yaml:"generation"`
	Serve      ServeConfig      `yaml:"serve"`
}

// OutputConfig says where the rendered page is published.
type OutputConfig struct {
	// Bucket is the S3 bucket the page is uploaded to.
	Bucket string `yaml:"bucket"`

	// File is the object key / file name of the page. Defaults to index.html.
	File string `yaml:"file"`

	// LocalPath, when set, writes the page to this directory instead of
	// uploading it.
	LocalPath string `yaml:"local_path"`

	// StorageClass is the S3 storage class. Defaults to STANDARD_IA.
	StorageClass string `yaml:"storage_class"`
}

// AWSConfig selects the AWS region queried and published to.
type AWSConfig struct {
	// Region overrides the region resolved from the environment.
	Region string `yaml:"region"`
}

// CDNConfig identifies the CloudFront distribution serving the page.
type CDNConfig struct {
	TagKey   string `yaml:"tag_key"`
	TagValue string `yaml:"tag_value"`
}

// NotifyConfig configures failure notifications.
type NotifyConfig struct {
	// TopicARN is the SNS topic notified when generation fails. Empty
	// disables notifications.
	TopicARN string `yaml:"topic_arn"`

	Subject string `yaml:"subject"`
}

// GenerationConfig tunes report generation.
type GenerationConfig struct {
	// MaxConcurrency is the number of services processed in parallel.
	// Defaults to 1.
	MaxConcurrency int `yaml:"max_concurrency"`

	// FailurePolicy is "fail-fast" (default) or "isolate".
	FailurePolicy string `yaml:"failure_policy"`

	// Ordering is "lexical" (default) or "semantic".
	Ordering string `yaml:"ordering"`

	// HTTPTimeout is the timeout of each documentation page request.
	// Defaults to 30s.
	HTTPTimeout Duration `yaml:"http_timeout"`

	// Title overrides the page title.
	Title string `yaml:"title"`
}

// ServeConfig configures serve mode.
type ServeConfig struct {
	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// Interval is the time between regenerations. Defaults to 1h, minimum 1m.
	Interval Duration `yaml:"interval"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Parse parses YAML configuration data, applies defaults, expands
// environment variables and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Output.File == "" {
		c.Output.File = DefaultFile
	}
	if c.Output.StorageClass == "" {
		c.Output.StorageClass = DefaultStorageClass
	}
	if c.CDN.TagKey == "" {
		c.CDN.TagKey = DefaultTagKey
	}
	if c.CDN.TagValue == "" {
		c.CDN.TagValue = DefaultTagValue
	}
	if c.Generation.MaxConcurrency == 0 {
		c.Generation.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.Generation.FailurePolicy == "" {
		c.Generation.FailurePolicy = DefaultFailurePolicy
	}
	if c.Generation.Ordering == "" {
		c.Generation.Ordering = DefaultOrdering
	}
	if c.Generation.HTTPTimeout == 0 {
		c.Generation.HTTPTimeout = Duration(DefaultHTTPTimeout)
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.Interval == 0 {
		c.Serve.Interval = Duration(DefaultServeInterval)
	}
}

// expand substitutes environment variables in the string settings.
func (c *Config) expand() error {
	fields := []struct {
		path  string
		value *string
	}{
		{"output.bucket", &c.Output.Bucket},
		{"output.file", &c.Output.File},
		{"output.local_path", &c.Output.LocalPath},
		{"aws.region", &c.AWS.Region},
		{"cdn.tag_key", &c.CDN.TagKey},
		{"cdn.tag_value", &c.CDN.TagValue},
		{"notify.topic_arn", &c.Notify.TopicARN},
		{"notify.subject", &c.Notify.Subject},
		{"generation.title", &c.Generation.Title},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.path, err)
		}
		*f.value = strings.TrimSpace(expanded)
	}
	return nil
}

// Validate checks a configuration with defaults applied.
func (c *Config) Validate() error {
	if c.Output.File != filepath.Base(c.Output.File) || strings.HasPrefix(c.Output.File, ".") {
		return fmt.Errorf("output.file must be a plain file name, got %q", c.Output.File)
	}
	if !storageClasses[c.Output.StorageClass] {
		return fmt.Errorf("output.storage_class: unknown storage class %q", c.Output.StorageClass)
	}

	if c.Notify.TopicARN != "" && !strings.HasPrefix(c.Notify.TopicARN, "arn:") {
		return fmt.Errorf("notify.topic_arn must be an ARN, got %q", c.Notify.TopicARN)
	}

	g := c.Generation
	if g.MaxConcurrency < 1 || g.MaxConcurrency > maxConcurrency {
		return fmt.Errorf("generation.max_concurrency must be between 1 and %d, got %d", maxConcurrency, g.MaxConcurrency)
	}
	if g.FailurePolicy != "fail-fast" && g.FailurePolicy != "isolate" {
		return fmt.Errorf("generation.failure_policy must be 'fail-fast' or 'isolate', got %q", g.FailurePolicy)
	}
	if g.Ordering != "lexical" && g.Ordering != "semantic" {
		return fmt.Errorf("generation.ordering must be 'lexical' or 'semantic', got %q", g.Ordering)
	}
	if g.HTTPTimeout.Duration() < time.Second {
		return fmt.Errorf("generation.http_timeout must be at least 1s, got %s", g.HTTPTimeout.Duration())
	}

	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port must be between 1 and 65535, got %d", c.Serve.Port)
	}
	if c.Serve.Interval.Duration() < minServeInterval {
		return fmt.Errorf("serve.interval must be at least %s, got %s", minServeInterval, c.Serve.Interval.Duration())
	}
	return nil
}

// HasDestination reports whether a page destination is configured.
func (c *Config) HasDestination() bool {
	return c.Output.Bucket != "" || c.Output.LocalPath != ""
}
