package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	"github.com/aws/aws-sdk-go-v2/service/elasticbeanstalk"
	"github.com/aws/aws-sdk-go-v2/service/kafka"
	"github.com/aws/aws-sdk-go-v2/service/lightsail"
	"github.com/aws/aws-sdk-go-v2/service/mq"
	"github.com/aws/aws-sdk-go-v2/service/opensearch"
	"github.com/aws/aws-sdk-go-v2/service/rds"
)

// LightsailAPI is the subset of the Lightsail client used here.
type LightsailAPI interface {
	GetBlueprints(ctx context.Context, in *lightsail.GetBlueprintsInput, optFns ...func(*lightsail.Options)) (*lightsail.GetBlueprintsOutput, error)
	GetRelationalDatabaseBlueprints(ctx context.Context, in *lightsail.GetRelationalDatabaseBlueprintsInput, optFns ...func(*lightsail.Options)) (*lightsail.GetRelationalDatabaseBlueprintsOutput, error)
}

// MQAPI is the subset of the Amazon MQ client used here.
type MQAPI interface {
	DescribeBrokerEngineTypes(ctx context.Context, in *mq.DescribeBrokerEngineTypesInput, optFns ...func(*mq.Options)) (*mq.DescribeBrokerEngineTypesOutput, error)
}

// OpenSearchAPI is the subset of the OpenSearch client used here.
type OpenSearchAPI interface {
	ListVersions(ctx context.Context, in *opensearch.ListVersionsInput, optFns ...func(*opensearch.Options)) (*opensearch.ListVersionsOutput, error)
}

// BeanstalkAPI is the subset of the Elastic Beanstalk client used here.
type BeanstalkAPI interface {
	ListAvailableSolutionStacks(ctx context.Context, in *elasticbeanstalk.ListAvailableSolutionStacksInput, optFns ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.ListAvailableSolutionStacksOutput, error)
}

// Clients groups the service clients the adapter calls. A nil client makes
// its sources fail with a transport error.
type Clients struct {
	Lightsail   LightsailAPI
	MQ          MQAPI
	OpenSearch  OpenSearchAPI
	RDS         rds.DescribeDBEngineVersionsAPIClient
	ElastiCache elasticache.DescribeCacheEngineVersionsAPIClient
	Beanstalk   BeanstalkAPI
	Kafka       kafka.ListKafkaVersionsAPIClient
}

// NewClients builds every service client from cfg.
func NewClients(cfg aws.Config) Clients {
	return Clients{
		Lightsail:   lightsail.NewFromConfig(cfg),
		MQ:          mq.NewFromConfig(cfg),
		OpenSearch:  opensearch.NewFromConfig(cfg),
		RDS:         rds.NewFromConfig(cfg),
		ElastiCache: elasticache.NewFromConfig(cfg),
		Beanstalk:   elasticbeanstalk.NewFromConfig(cfg),
		Kafka:       kafka.NewFromConfig(cfg),
	}
}

// LoadConfig loads the default AWS configuration (environment, shared
// files, instance role). An empty region keeps the resolved default.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}
