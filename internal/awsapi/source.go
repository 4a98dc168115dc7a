package awsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	"github.com/aws/aws-sdk-go-v2/service/elasticbeanstalk"
	"github.com/aws/aws-sdk-go-v2/service/kafka"
	"github.com/aws/aws-sdk-go-v2/service/lightsail"
	"github.com/aws/aws-sdk-go-v2/service/mq"
	"github.com/aws/aws-sdk-go-v2/service/opensearch"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/jpalmerr/versionboard"
)

var errNoClient = errors.New("service client not configured")

type documentFunc func(ctx context.Context, c Clients) (any, error)

// Source implements versionboard.Source over the AWS APIs.
type Source struct {
	clients   Clients
	documents map[string]documentFunc
}

// NewSource creates a [Source] serving every structured source of the
// default catalog.
func NewSource(clients Clients) *Source {
	return &Source{
		clients: clients,
		documents: map[string]documentFunc{
			versionboard.SourceLightsailBlueprints:         lightsailBlueprints,
			versionboard.SourceLightsailDatabaseBlueprints: lightsailDatabaseBlueprints,
			versionboard.SourceMQBrokerEngineTypes:         mqBrokerEngineTypes,
			versionboard.SourceOpenSearchVersions:          openSearchVersions,
			versionboard.SourceRDSEngineVersions:           rdsEngineVersions,
			versionboard.SourceElastiCacheEngineVersions:   elastiCacheEngineVersions,
			versionboard.SourceElasticBeanstalkStacks:      beanstalkSolutionStacks,
			versionboard.SourceKafkaVersions:               kafkaVersions,
		},
	}
}

// SourceIDs returns the IDs this adapter can fetch, sorted.
func (s *Source) SourceIDs() []string {
	ids := make([]string, 0, len(s.documents))
	for id := range s.documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Fetch implements versionboard.Source. Every failure is a
// [*versionboard.TransportError].
func (s *Source) Fetch(ctx context.Context, ref versionboard.SourceRef) (versionboard.RawPayload, error) {
	fail := func(err error) (versionboard.RawPayload, error) {
		return versionboard.RawPayload{}, &versionboard.TransportError{Source: ref.ID, Err: err}
	}

	if ref.Kind != versionboard.SourceAPI {
		return fail(fmt.Errorf("not an api source (kind %s)", ref.Kind))
	}
	document, ok := s.documents[ref.ID]
	if !ok {
		return fail(fmt.Errorf("unknown api source %q", ref.ID))
	}

	doc, err := document(ctx, s.clients)
	if err != nil {
		return fail(err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fail(fmt.Errorf("encode document: %w", err))
	}
	return versionboard.StructuredPayload(raw), nil
}

// Document shapes. Field names follow the API responses.

type blueprint struct {
	BlueprintID string `json:"BlueprintId"`
	Name        string `json:"Name"`
	Type        string `json:"Type"`
	Version     string `json:"Version"`
	IsActive    bool   `json:"IsActive"`
}

type databaseBlueprint struct {
	BlueprintID              string `json:"BlueprintId"`
	Engine                   string `json:"Engine"`
	EngineVersion            string `json:"EngineVersion"`
	EngineDescription        string `json:"EngineDescription"`
	EngineVersionDescription string `json:"EngineVersionDescription"`
}

type brokerEngineType struct {
	EngineType     string          `json:"EngineType"`
	EngineVersions []engineVersion `json:"EngineVersions"`
}

type engineVersion struct {
	Name string `json:"Name"`
}

type dbEngineVersion struct {
	Engine        string `json:"Engine"`
	EngineVersion string `json:"EngineVersion"`
}

type kafkaVersion struct {
	Version string `json:"Version"`
	Status  string `json:"Status"`
}

func lightsailBlueprints(ctx context.Context, c Clients) (any, error) {
	if c.Lightsail == nil {
		return nil, errNoClient
	}
	var out []blueprint
	var token *string
	for {
		page, err := c.Lightsail.GetBlueprints(ctx, &lightsail.GetBlueprintsInput{PageToken: token})
		if err != nil {
			return nil, fmt.Errorf("lightsail GetBlueprints: %w", err)
		}
		for _, b := range page.Blueprints {
			out = append(out, blueprint{
				BlueprintID: aws.ToString(b.BlueprintId),
				Name:        aws.ToString(b.Name),
				Type:        string(b.Type),
				Version:     aws.ToString(b.Version),
				IsActive:    aws.ToBool(b.IsActive),
			})
		}
		if aws.ToString(page.NextPageToken) == "" {
			break
		}
		token = page.NextPageToken
	}
	return map[string]any{"Blueprints": nonNil(out)}, nil
}

func lightsailDatabaseBlueprints(ctx context.Context, c Clients) (any, error) {
	if c.Lightsail == nil {
		return nil, errNoClient
	}
	var out []databaseBlueprint
	var token *string
	for {
		page, err := c.Lightsail.GetRelationalDatabaseBlueprints(ctx, &lightsail.GetRelationalDatabaseBlueprintsInput{PageToken: token})
		if err != nil {
			return nil, fmt.Errorf("lightsail GetRelationalDatabaseBlueprints: %w", err)
		}
		for _, b := range page.Blueprints {
			out = append(out, databaseBlueprint{
				BlueprintID:              aws.ToString(b.BlueprintId),
				Engine:                   string(b.Engine),
				EngineVersion:            aws.ToString(b.EngineVersion),
				EngineDescription:        aws.ToString(b.EngineDescription),
				EngineVersionDescription: aws.ToString(b.EngineVersionDescription),
			})
		}
		if aws.ToString(page.NextPageToken) == "" {
			break
		}
		token = page.NextPageToken
	}
	return map[string]any{"Blueprints": nonNil(out)}, nil
}

func mqBrokerEngineTypes(ctx context.Context, c Clients) (any, error) {
	if c.MQ == nil {
		return nil, errNoClient
	}
	var out []brokerEngineType
	var token *string
	for {
		page, err := c.MQ.DescribeBrokerEngineTypes(ctx, &mq.DescribeBrokerEngineTypesInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("mq DescribeBrokerEngineTypes: %w", err)
		}
		for _, t := range page.BrokerEngineTypes {
			bet := brokerEngineType{EngineType: string(t.EngineType), EngineVersions: []engineVersion{}}
			for _, v := range t.EngineVersions {
				bet.EngineVersions = append(bet.EngineVersions, engineVersion{Name: aws.ToString(v.Name)})
			}
			out = append(out, bet)
		}
		if aws.ToString(page.NextToken) == "" {
			break
		}
		token = page.NextToken
	}
	return map[string]any{"BrokerEngineTypes": nonNil(out)}, nil
}

func openSearchVersions(ctx context.Context, c Clients) (any, error) {
	if c.OpenSearch == nil {
		return nil, errNoClient
	}
	var out []string
	var token *string
	for {
		page, err := c.OpenSearch.ListVersions(ctx, &opensearch.ListVersionsInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("opensearch ListVersions: %w", err)
		}
		out = append(out, page.Versions...)
		if aws.ToString(page.NextToken) == "" {
			break
		}
		token = page.NextToken
	}
	return map[string]any{"Versions": nonNil(out)}, nil
}

func rdsEngineVersions(ctx context.Context, c Clients) (any, error) {
	if c.RDS == nil {
		return nil, errNoClient
	}
	var out []dbEngineVersion
	p := rds.NewDescribeDBEngineVersionsPaginator(c.RDS, &rds.DescribeDBEngineVersionsInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("rds DescribeDBEngineVersions: %w", err)
		}
		for _, v := range page.DBEngineVersions {
			out = append(out, dbEngineVersion{
				Engine:        aws.ToString(v.Engine),
				EngineVersion: aws.ToString(v.EngineVersion),
			})
		}
	}
	return map[string]any{"DBEngineVersions": nonNil(out)}, nil
}

func elastiCacheEngineVersions(ctx context.Context, c Clients) (any, error) {
	if c.ElastiCache == nil {
		return nil, errNoClient
	}
	var out []dbEngineVersion
	p := elasticache.NewDescribeCacheEngineVersionsPaginator(c.ElastiCache, &elasticache.DescribeCacheEngineVersionsInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("elasticache DescribeCacheEngineVersions: %w", err)
		}
		for _, v := range page.CacheEngineVersions {
			out = append(out, dbEngineVersion{
				Engine:        aws.ToString(v.Engine),
				EngineVersion: aws.ToString(v.EngineVersion),
			})
		}
	}
	return map[string]any{"CacheEngineVersions": nonNil(out)}, nil
}

func beanstalkSolutionStacks(ctx context.Context, c Clients) (any, error) {
	if c.Beanstalk == nil {
		return nil, errNoClient
	}
	out, err := c.Beanstalk.ListAvailableSolutionStacks(ctx, &elasticbeanstalk.ListAvailableSolutionStacksInput{})
	if err != nil {
		return nil, fmt.Errorf("elasticbeanstalk ListAvailableSolutionStacks: %w", err)
	}
	return map[string]any{"SolutionStacks": nonNil(out.SolutionStacks)}, nil
}

func kafkaVersions(ctx context.Context, c Clients) (any, error) {
	if c.Kafka == nil {
		return nil, errNoClient
	}
	var out []kafkaVersion
	p := kafka.NewListKafkaVersionsPaginator(c.Kafka, &kafka.ListKafkaVersionsInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("kafka ListKafkaVersions: %w", err)
		}
		for _, v := range page.KafkaVersions {
			out = append(out, kafkaVersion{
				Version: aws.ToString(v.Version),
				Status:  string(v.Status),
			})
		}
	}
	return map[string]any{"KafkaVersions": nonNil(out)}, nil
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
