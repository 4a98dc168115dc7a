package versionboard_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/versionboard"
	"github.com/jpalmerr/versionboard/internal/snapshot"
)

func versionsOf(report *versionboard.Report, service string) []string {
	var out []string
	for _, row := range report.Rows {
		if row.Service == service {
			out = append(out, row.Version)
		}
	}
	return out
}

func TestDefaultCatalog_Snapshots(t *testing.T) {
	agg, err := versionboard.NewAggregator(versionboard.DefaultCatalog(),
		snapshot.NewSource("testdata/snapshots"),
		versionboard.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	report, err := agg.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Failures)

	assert.Equal(t, []string{"9.6.24", "15.2", "10.21"}, versionsOf(report, "Amazon Relational Database Service (RDS) postgres"))
	assert.Equal(t, []string{"8.0.35", "5.7.44"}, versionsOf(report, "Amazon Relational Database Service (RDS) mysql"))
	assert.Equal(t, []string{"3.5.1", "2.8.1"}, versionsOf(report, "Amazon Managed Streaming for Apache Kafka (MSK)"))
	assert.Equal(t, []string{"1.29", "1.28", "1.27"}, versionsOf(report, "Amazon Elastic Kubernetes Service (Amazon EKS)"))
	assert.Equal(t, []string{"3.11.2"}, versionsOf(report, "Amazon Keyspaces (for Apache Cassandra)"))
	assert.Equal(t, []string{"Node.js 20", "Python 3.12", "Java 21"}, versionsOf(report, "AWS Lambda Runtimes"))
	assert.Equal(t, []string{"20", "18"}, versionsOf(report, "AWS Elastic Beanstalk Node.js"))
	assert.Equal(t, []string{"3.11", "3.8"}, versionsOf(report, "AWS Elastic Beanstalk Python"))

	services := report.Services()
	require.NotEmpty(t, services)
	assert.Equal(t, "Amazon Lightsail blueprints", services[0])
	assert.Equal(t, "AWS Lambda Runtimes", services[len(services)-1])
}

func TestDefaultCatalog_SnapshotsSemantic(t *testing.T) {
	agg, err := versionboard.NewAggregator(versionboard.DefaultCatalog(),
		snapshot.NewSource("testdata/snapshots"),
		versionboard.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		versionboard.WithEngineOrdering(versionboard.OrderSemanticDescending),
		versionboard.WithMaxConcurrency(4),
	)
	require.NoError(t, err)

	report, err := agg.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"15.2", "10.21", "9.6.24"}, versionsOf(report, "Amazon Relational Database Service (RDS) postgres"))
}
