package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

type fakeCloudFront struct {
	distributions []cftypes.DistributionSummary
	tags          map[string][]cftypes.Tag
	invalidation  *cloudfront.CreateInvalidationInput
}

func (f *fakeCloudFront) ListDistributions(_ context.Context, _ *cloudfront.ListDistributionsInput, _ ...func(*cloudfront.Options)) (*cloudfront.ListDistributionsOutput, error) {
	return &cloudfront.ListDistributionsOutput{
		DistributionList: &cftypes.DistributionList{Items: f.distributions, IsTruncated: aws.Bool(false)},
	}, nil
}

func (f *fakeCloudFront) ListTagsForResource(_ context.Context, in *cloudfront.ListTagsForResourceInput, _ ...func(*cloudfront.Options)) (*cloudfront.ListTagsForResourceOutput, error) {
	return &cloudfront.ListTagsForResourceOutput{Tags: &cftypes.Tags{Items: f.tags[aws.ToString(in.Resource)]}}, nil
}

func (f *fakeCloudFront) CreateInvalidation(_ context.Context, in *cloudfront.CreateInvalidationInput, _ ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error) {
	f.invalidation = in
	return &cloudfront.CreateInvalidationOutput{Invalidation: &cftypes.Invalidation{Id: aws.String("I123")}}, nil
}

func taggedCloudFront() *fakeCloudFront {
	return &fakeCloudFront{
		distributions: []cftypes.DistributionSummary{
			{Id: aws.String("EOTHER"), ARN: aws.String("arn:other")},
			{Id: aws.String("EVERSIONS"), ARN: aws.String("arn:versions")},
		},
		tags: map[string][]cftypes.Tag{
			"arn:other":    {{Key: aws.String("project"), Value: aws.String("website")}},
			"arn:versions": {{Key: aws.String("project"), Value: aws.String("aws-managed-services-versions")}},
		},
	}
}

var testConfig = S3Config{
	Bucket:   "versions-bucket",
	TagKey:   "project",
	TagValue: "aws-managed-services-versions",
}

func TestS3Publisher_Publish(t *testing.T) {
	s3c := &fakeS3{}
	cf := taggedCloudFront()
	p, err := NewS3Publisher(s3c, cf, testConfig, nil)
	require.NoError(t, err)
	p.reference = func() string { return CallerReferencePrefix + "run-1" }

	require.NoError(t, p.Publish(context.Background(), "index.html", []byte("<html></html>")))

	require.NotNil(t, s3c.input)
	assert.Equal(t, "versions-bucket", aws.ToString(s3c.input.Bucket))
	assert.Equal(t, "index.html", aws.ToString(s3c.input.Key))
	assert.Equal(t, "text/html", aws.ToString(s3c.input.ContentType))
	assert.Equal(t, "STANDARD_IA", string(s3c.input.StorageClass))
	assert.Equal(t, "<html></html>", string(s3c.body))

	require.NotNil(t, cf.invalidation)
	assert.Equal(t, "EVERSIONS", aws.ToString(cf.invalidation.DistributionId))
	assert.Equal(t, []string{"/index.html"}, cf.invalidation.InvalidationBatch.Paths.Items)
	assert.Equal(t, int32(1), aws.ToInt32(cf.invalidation.InvalidationBatch.Paths.Quantity))
	assert.Equal(t, "aws-managed-services-versions-invalidation-run-1",
		aws.ToString(cf.invalidation.InvalidationBatch.CallerReference))
}

func TestS3Publisher_NoTaggedDistribution(t *testing.T) {
	cf := taggedCloudFront()
	cf.tags["arn:versions"] = nil
	p, err := NewS3Publisher(&fakeS3{}, cf, testConfig, nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "index.html", []byte("x"))

	assert.ErrorIs(t, err, ErrDistributionNotFound)
	assert.Nil(t, cf.invalidation)
}

func TestS3Publisher_UploadFailureSkipsInvalidation(t *testing.T) {
	cf := taggedCloudFront()
	p, err := NewS3Publisher(&fakeS3{err: errors.New("access denied")}, cf, testConfig, nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "index.html", []byte("x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Nil(t, cf.invalidation)
}

func TestNewS3Publisher_Validation(t *testing.T) {
	_, err := NewS3Publisher(nil, taggedCloudFront(), testConfig, nil)
	assert.Error(t, err)

	_, err = NewS3Publisher(&fakeS3{}, taggedCloudFront(), S3Config{TagKey: "k", TagValue: "v"}, nil)
	assert.Error(t, err)

	_, err = NewS3Publisher(&fakeS3{}, taggedCloudFront(), S3Config{Bucket: "b"}, nil)
	assert.Error(t, err)
}

func TestFilePublisher_Publish(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	p := NewFilePublisher(dir, nil)

	require.NoError(t, p.Publish(context.Background(), "index.html", []byte("first")))
	require.NoError(t, p.Publish(context.Background(), "index.html", []byte("second")))

	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
