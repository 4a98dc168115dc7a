package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/jpalmerr/versionboard"
	"github.com/jpalmerr/versionboard/config"
	"github.com/jpalmerr/versionboard/internal/awsapi"
	"github.com/jpalmerr/versionboard/internal/fetch"
	"github.com/jpalmerr/versionboard/internal/notify"
	"github.com/jpalmerr/versionboard/internal/publish"
	"github.com/jpalmerr/versionboard/internal/snapshot"
)

// awsLoader resolves the AWS configuration once, on first use, so offline
// runs never touch credentials.
type awsLoader struct {
	region string

	mu  sync.Mutex
	cfg *aws.Config
}

func (l *awsLoader) load(ctx context.Context) (aws.Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cfg != nil {
		return *l.cfg, nil
	}
	cfg, err := awsapi.LoadConfig(ctx, l.region)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	l.cfg = &cfg
	return cfg, nil
}

// newSource returns the snapshot source for dir, or the live source.
func newSource(ctx context.Context, cfg *config.Config, loader *awsLoader, dir string) (versionboard.Source, func(), error) {
	if dir != "" {
		return snapshot.NewSource(dir), func() {}, nil
	}

	awsCfg, err := loader.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	client := fetch.NewClient(cfg.Generation.HTTPTimeout.Duration())
	return versionboard.RoutedSource{
		API:  awsapi.NewSource(awsapi.NewClients(awsCfg)),
		HTML: fetch.NewHTMLSource(client),
	}, client.Close, nil
}

// newPublisher returns the configured page destination. A local path wins
// over a bucket.
func newPublisher(ctx context.Context, cfg *config.Config, loader *awsLoader, logger *slog.Logger) (publish.Publisher, error) {
	switch {
	case cfg.Output.LocalPath != "":
		return publish.NewFilePublisher(cfg.Output.LocalPath, logger), nil
	case cfg.Output.Bucket != "":
		awsCfg, err := loader.load(ctx)
		if err != nil {
			return nil, err
		}
		return publish.NewS3Publisher(s3.NewFromConfig(awsCfg), cloudfront.NewFromConfig(awsCfg), publish.S3Config{
			Bucket:       cfg.Output.Bucket,
			StorageClass: cfg.Output.StorageClass,
			TagKey:       cfg.CDN.TagKey,
			TagValue:     cfg.CDN.TagValue,
		}, logger)
	default:
		return nil, errors.New("no output configured: set output.bucket or output.local_path, or use --stdout")
	}
}

// newNotifier returns the SNS notifier, or a no-op one without a topic.
func newNotifier(ctx context.Context, cfg *config.Config, loader *awsLoader, logger *slog.Logger) (notify.Notifier, error) {
	if cfg.Notify.TopicARN == "" {
		return notify.Nop{}, nil
	}
	awsCfg, err := loader.load(ctx)
	if err != nil {
		return nil, err
	}
	return notify.NewSNSNotifier(sns.NewFromConfig(awsCfg), cfg.Notify.TopicARN, cfg.Notify.Subject, logger)
}

// newAggregator builds the aggregator of the default catalog.
func newAggregator(cfg *config.Config, source versionboard.Source, logger *slog.Logger) (*versionboard.Aggregator, error) {
	opts, err := config.AggregatorOptions(cfg, logger, version)
	if err != nil {
		return nil, err
	}
	return versionboard.NewAggregator(versionboard.DefaultCatalog(), source, opts...)
}
