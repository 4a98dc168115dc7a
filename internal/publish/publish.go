// Package publish delivers a rendered report page: to S3 with a CloudFront
// invalidation of the distribution that serves it, or to a local directory.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

const (
	// ContentType is the content type of published pages.
	ContentType = "text/html"

	// DefaultStorageClass is the S3 storage class of published pages.
	DefaultStorageClass = "STANDARD_IA"

	// CallerReferencePrefix prefixes CloudFront invalidation caller
	// references.
	CallerReferencePrefix = "aws-managed-services-versions-invalidation-"
)

// ErrDistributionNotFound is returned when no CloudFront distribution
// carries the configured tag.
var ErrDistributionNotFound = errors.New("no cloudfront distribution with tag")

// Publisher delivers a page under name.
type Publisher interface {
	Publish(ctx context.Context, name string, page []byte) error
}

// S3API is the subset of the S3 client used here.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// CloudFrontAPI is the subset of the CloudFront client used here.
type CloudFrontAPI interface {
	cloudfront.ListDistributionsAPIClient
	ListTagsForResource(ctx context.Context, in *cloudfront.ListTagsForResourceInput, optFns ...func(*cloudfront.Options)) (*cloudfront.ListTagsForResourceOutput, error)
	CreateInvalidation(ctx context.Context, in *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
}

// S3Config configures an [S3Publisher].
type S3Config struct {
	Bucket       string
	StorageClass string
	TagKey       string
	TagValue     string
}

// S3Publisher uploads pages to S3 and invalidates their CloudFront path.
type S3Publisher struct {
	s3        S3API
	cf        CloudFrontAPI
	cfg       S3Config
	logger    *slog.Logger
	reference func() string
}

// NewS3Publisher creates an [S3Publisher]. A nil logger selects
// [slog.Default].
//
// Returns an error if a client is nil or the bucket or tag is missing.
func NewS3Publisher(s3Client S3API, cf CloudFrontAPI, cfg S3Config, logger *slog.Logger) (*S3Publisher, error) {
	if s3Client == nil || cf == nil {
		return nil, errors.New("s3 and cloudfront clients are required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if cfg.TagKey == "" || cfg.TagValue == "" {
		return nil, errors.New("distribution tag key and value are required")
	}
	if cfg.StorageClass == "" {
		cfg.StorageClass = DefaultStorageClass
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Publisher{
		s3:        s3Client,
		cf:        cf,
		cfg:       cfg,
		logger:    logger,
		reference: func() string { return CallerReferencePrefix + uuid.NewString() },
	}, nil
}

// Publish uploads page as s3://<bucket>/<name>, then invalidates /<name> on
// the tagged distribution.
func (p *S3Publisher) Publish(ctx context.Context, name string, page []byte) error {
	key := strings.TrimPrefix(name, "/")
	if key == "" {
		return errors.New("object name cannot be empty")
	}

	_, err := p.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.cfg.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(page),
		ContentType:  aws.String(ContentType),
		StorageClass: s3types.StorageClass(p.cfg.StorageClass),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", p.cfg.Bucket, key, err)
	}
	p.logger.Info("page uploaded", "bucket", p.cfg.Bucket, "key", key, "bytes", len(page))

	distributionID, err := p.findDistribution(ctx)
	if err != nil {
		return err
	}

	ref := p.reference()
	out, err := p.cf.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(distributionID),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(ref),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(1),
				Items:    []string{"/" + key},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("invalidate /%s on %s: %w", key, distributionID, err)
	}

	attrs := []any{"distribution", distributionID, "path", "/" + key, "caller_reference", ref}
	if out != nil && out.Invalidation != nil {
		attrs = append(attrs, "invalidation", aws.ToString(out.Invalidation.Id))
	}
	p.logger.Info("cache invalidated", attrs...)
	return nil
}

// findDistribution returns the ID of the first distribution carrying the
// configured tag.
func (p *S3Publisher) findDistribution(ctx context.Context) (string, error) {
	pages := cloudfront.NewListDistributionsPaginator(p.cf, &cloudfront.ListDistributionsInput{})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("list distributions: %w", err)
		}
		if page.DistributionList == nil {
			continue
		}
		for _, d := range page.DistributionList.Items {
			tags, err := p.cf.ListTagsForResource(ctx, &cloudfront.ListTagsForResourceInput{Resource: d.ARN})
			if err != nil {
				return "", fmt.Errorf("list tags of %s: %w", aws.ToString(d.Id), err)
			}
			if hasTag(tags.Tags, p.cfg.TagKey, p.cfg.TagValue) {
				return aws.ToString(d.Id), nil
			}
		}
	}
	return "", fmt.Errorf("%w %s=%s", ErrDistributionNotFound, p.cfg.TagKey, p.cfg.TagValue)
}

func hasTag(tags *cftypes.Tags, key, value string) bool {
	if tags == nil {
		return false
	}
	for _, t := range tags.Items {
		if aws.ToString(t.Key) == key && aws.ToString(t.Value) == value {
			return true
		}
	}
	return false
}

// FilePublisher writes pages into a local directory.
type FilePublisher struct {
	dir    string
	logger *slog.Logger
}

// NewFilePublisher creates a [FilePublisher] writing to dir. A nil logger
// selects [slog.Default].
func NewFilePublisher(dir string, logger *slog.Logger) *FilePublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilePublisher{dir: dir, logger: logger}
}

// Publish writes page to <dir>/<name>. The file is replaced atomically.
func (p *FilePublisher) Publish(_ context.Context, name string, page []byte) error {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return errors.New("file name cannot be empty")
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(p.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(page); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}

	path := filepath.Join(p.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	p.logger.Info("page written", "path", path, "bytes", len(page))
	return nil
}
