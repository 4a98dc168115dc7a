package versionboard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Catalog is the fixed, ordered list of services a report covers together
// with the documentation index used to link them. The order of descriptors
// is the order of rows in the report.
type Catalog struct {
	descriptors []ServiceDescriptor
	docs        DocumentationIndex
}

// NewCatalog creates a [Catalog]. Descriptor names must be unique.
func NewCatalog(docs DocumentationIndex, descriptors ...ServiceDescriptor) (Catalog, error) {
	if len(descriptors) == 0 {
		return Catalog{}, errors.New("catalog needs at least one service")
	}

	seen := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		if seen[d.name] {
			return Catalog{}, fmt.Errorf("duplicate service name: %q", d.name)
		}
		seen[d.name] = true
	}

	index := make(DocumentationIndex, len(docs))
	for k, v := range docs {
		index[k] = v
	}

	return Catalog{
		descriptors: append([]ServiceDescriptor(nil), descriptors...),
		docs:        index,
	}, nil
}

// Descriptors returns a copy of the catalog's descriptors, in report order.
func (c Catalog) Descriptors() []ServiceDescriptor {
	return append([]ServiceDescriptor(nil), c.descriptors...)
}

// Documentation returns the catalog's documentation index. Callers must not
// modify it.
func (c Catalog) Documentation() DocumentationIndex {
	return c.docs
}

// Sources returns the distinct sources referenced by the catalog, in first
// use order.
func (c Catalog) Sources() []SourceRef {
	seen := make(map[string]bool, len(c.descriptors))
	var refs []SourceRef
	for _, d := range c.descriptors {
		if seen[d.source.ID] {
			continue
		}
		seen[d.source.ID] = true
		refs = append(refs, d.source)
	}
	return refs
}

// Source IDs of the default catalog.
const (
	SourceLightsailBlueprints         = "lightsail-blueprints"
	SourceLightsailDatabaseBlueprints = "lightsail-database-blueprints"
	SourceMQBrokerEngineTypes         = "mq-broker-engine-types"
	SourceOpenSearchVersions          = "opensearch-versions"
	SourceRDSEngineVersions           = "rds-engine-versions"
	SourceElastiCacheEngineVersions   = "elasticache-engine-versions"
	SourceElasticBeanstalkStacks      = "elasticbeanstalk-solution-stacks"
	SourceKafkaVersions               = "kafka-versions"
	SourceKeyspacesPage               = "keyspaces-page"
	SourceEKSPage                     = "eks-kubernetes-versions-page"
	SourceLambdaPage                  = "lambda-runtimes-page"
)

// BeanstalkPlatforms are the Elastic Beanstalk platforms reported, in order.
// Each carries the separator that follows it in solution stack labels.
var BeanstalkPlatforms = []string{
	"PHP ",
	"Tomcat ",
	"Ruby ",
	"Python ",
	"IIS ",
	"Go ",
	"Node.js ",
}

// keyspacesPattern reads the Cassandra compatibility version out of the
// Keyspaces comparison page, e.g. "... clients that are compatible with
// Apache Cassandra 3.11.2. Amazon Keyspaces supports ...".
var keyspacesPattern = regexp.MustCompile(
	`clients that are compatible with Apache Cassandra (\d+(?:\.\d+)*)\.?\s+Amazon Keyspaces supports`)

// DefaultDocumentationIndex returns the documentation URLs of the default
// catalog, keyed by engine key.
func DefaultDocumentationIndex() DocumentationIndex {
	const (
		rdsOracle    = "https://docs.aws.amazon.com/AmazonRDS/latest/UserGuide/CHAP_Oracle.html"
		rdsSQLServer = "https://docs.aws.amazon.com/AmazonRDS/latest/UserGuide/CHAP_SQLServer.html"
		auroraMySQL  = "https://docs.aws.amazon.com/AmazonRDS/latest/AuroraUserGuide/AuroraMySQL.Updates.html"
	)
	return DocumentationIndex{
		"opensearch":         "https://docs.aws.amazon.com/opensearch-service/latest/developerguide/what-is.html#aes-choosing-version",
		"redis":              "https://docs.aws.amazon.com/AmazonElastiCache/latest/red-ug/supported-engine-versions.html",
		"memcached":          "https://docs.aws.amazon.com/AmazonElastiCache/latest/mem-ug/supported-engine-versions-mc.html",
		"kafka":              "https://docs.aws.amazon.com/msk/latest/developerguide/kafka-versions.html",
		"kubernetes":         "https://docs.aws.amazon.com/eks/latest/userguide/kubernetes-versions.html",
		"lambda":             "https://docs.aws.amazon.com/lambda/latest/dg/lambda-runtimes.html",
		"postgres":           "https://docs.aws.amazon.com/AmazonRDS/latest/UserGuide/CHAP_PostgreSQL.html",
		"aurora-postgresql":  "https://docs.aws.amazon.com/AmazonRDS/latest/AuroraUserGuide/AuroraPostgreSQL.Updates.20180305.html",
		"aurora":             auroraMySQL,
		"aurora-mysql":       auroraMySQL,
		"neptune":            "https://docs.aws.amazon.com/neptune/latest/userguide/engine-releases.html",
		"docdb":              "https://aws.amazon.com/documentdb/faqs/",
		"mariadb":            "https://docs.aws.amazon.com/AmazonRDS/latest/UserGuide/CHAP_MariaDB.html",
		"mysql":              "https://docs.aws.amazon.com/AmazonRDS/latest/UserGuide/CHAP_MySQL.html",
		"oracle-ee":          rdsOracle,
		"oracle-se":          rdsOracle,
		"oracle-se1":         rdsOracle,
		"oracle-se2":         rdsOracle,
		"sqlserver-ee":       rdsSQLServer,
		"sqlserver-ex":       rdsSQLServer,
		"sqlserver-se":       rdsSQLServer,
		"sqlserver-web":      rdsSQLServer,
		"activemq":           "https://docs.aws.amazon.com/amazon-mq/latest/developer-guide/activemq-version-management.html",
		"rabbitmq":           "https://docs.aws.amazon.com/amazon-mq/latest/developer-guide/rabbitmq-version-management.html",
		"cassandra":          "https://docs.aws.amazon.com/keyspaces/latest/devguide/keyspaces-vs-cassandra.html",
		"lightsail_app":      "https://lightsail.aws.amazon.com/ls/docs/en_us/articles/compare-options-choose-lightsail-instance-image",
		"lightsail_database": "https://lightsail.aws.amazon.com/ls/docs/en_us/articles/amazon-lightsail-choosing-a-database",
		"elasticbeanstalk":   "https://docs.aws.amazon.com/elasticbeanstalk/latest/platforms/platforms-supported.html",
	}
}

// DefaultCatalog returns the catalog of AWS managed services reported by
// default. HTML sources point at the pages registered in
// [DefaultDocumentationIndex].
func DefaultCatalog() Catalog {
	docs := DefaultDocumentationIndex()
	lexical := WithOrdering(OrderLexicalDescending)

	descriptors := []ServiceDescriptor{
		MustServiceDescriptor("Amazon Lightsail blueprints",
			APISource(SourceLightsailBlueprints),
			Records("lightsail-app-blueprints", "Blueprints", Equals("Type", "app"), JoinFields(" ", "Name", "Version")),
			WithEngineKey("lightsail_app"),
		),
		MustServiceDescriptor("Amazon Lightsail databases",
			APISource(SourceLightsailDatabaseBlueprints),
			Records("lightsail-database-blueprints", "Blueprints", nil, Field("EngineVersionDescription")),
			WithEngineKey("lightsail_database"),
		),
		MustServiceDescriptor("Amazon MQ for Apache ActiveMQ",
			APISource(SourceMQBrokerEngineTypes),
			NestedRecords("mq:ACTIVEMQ", "BrokerEngineTypes", Equals("EngineType", "ACTIVEMQ"), "EngineVersions", Field("Name")),
			WithEngineKey("activemq"),
		),
		MustServiceDescriptor("Amazon MQ for RabbitMQ",
			APISource(SourceMQBrokerEngineTypes),
			NestedRecords("mq:RABBITMQ", "BrokerEngineTypes", Equals("EngineType", "RABBITMQ"), "EngineVersions", Field("Name")),
			WithEngineKey("rabbitmq"),
		),
		MustServiceDescriptor("Amazon OpenSearch Service",
			APISource(SourceOpenSearchVersions),
			Strings("opensearch-versions", "Versions"),
			WithEngineKey("opensearch"),
		),
		MustServiceDescriptor("Amazon Relational Database Service (RDS)",
			APISource(SourceRDSEngineVersions),
			EngineNames(),
			WithFanOut(func(engine string) Extractor { return EngineVersions(engine) }),
			lexical,
		),
		MustServiceDescriptor("Amazon Keyspaces (for Apache Cassandra)",
			HTMLSource(SourceKeyspacesPage, docs["cassandra"]),
			ProsePattern("div#main-col-body", keyspacesPattern),
			WithEngineKey("cassandra"),
		),
		MustServiceDescriptor("Amazon ElastiCache memcached",
			APISource(SourceElastiCacheEngineVersions),
			EngineVersions("memcached"),
			WithEngineKey("memcached"),
			lexical,
		),
		MustServiceDescriptor("Amazon ElastiCache redis",
			APISource(SourceElastiCacheEngineVersions),
			EngineVersions("redis"),
			WithEngineKey("redis"),
			lexical,
		),
	}

	for _, platform := range BeanstalkPlatforms {
		descriptors = append(descriptors, MustServiceDescriptor(
			"AWS Elastic Beanstalk "+strings.TrimSpace(platform),
			APISource(SourceElasticBeanstalkStacks),
			PlatformStack("SolutionStacks", platform),
			WithEngineKey("elasticbeanstalk"),
		))
	}

	descriptors = append(descriptors,
		MustServiceDescriptor("Amazon Managed Streaming for Apache Kafka (MSK)",
			APISource(SourceKafkaVersions),
			Records("kafka-active-versions", "KafkaVersions", Equals("Status", "ACTIVE"), Field("Version")),
			WithEngineKey("kafka"),
			lexical,
		),
		MustServiceDescriptor("Amazon Elastic Kubernetes Service (Amazon EKS)",
			HTMLSource(SourceEKSPage, docs["kubernetes"]),
			ItemizedList(),
			WithEngineKey("kubernetes"),
		),
		MustServiceDescriptor("AWS Lambda Runtimes",
			HTMLSource(SourceLambdaPage, docs["lambda"]),
			TableFirstColumn("div.awsui-util-container"),
			WithEngineKey("lambda"),
		),
	)

	catalog, err := NewCatalog(docs, descriptors...)
	if err != nil {
		panic("versionboard: default catalog: " + err.Error())
	}
	return catalog
}
