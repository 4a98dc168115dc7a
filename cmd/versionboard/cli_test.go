package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/versionboard"
)

const snapshotDir = "../../testdata/snapshots"

// executeCmd runs the root command with args and returns captured stdout.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "versionboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCmd(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "versionboard dev")
	assert.Contains(t, out, "commit: none")
}

func TestGenerate_FromSnapshotsToStdout(t *testing.T) {
	out, err := executeCmd(t, "generate", "--config", "", "--from", snapshotDir, "--stdout", "--output-file", "")

	require.NoError(t, err)
	assert.Contains(t, out, "<title>Amazon Managed Services versions</title>")
	assert.Contains(t, out, "<td>Amazon Elastic Kubernetes Service (Amazon EKS)</td>\n<td><a href='https://docs.aws.amazon.com/eks/latest/userguide/kubernetes-versions.html'>1.29</a></td>")
	assert.Contains(t, out, ">3.11.2</a>")
	assert.Contains(t, out, "<td>Amazon Relational Database Service (RDS) postgres</td>")
	assert.Contains(t, out, "<td>AWS Lambda Runtimes</td>\n<td><a href='https://docs.aws.amazon.com/lambda/latest/dg/lambda-runtimes.html'>Node.js 20</a></td>")
	assert.Contains(t, out, ">3.5.1</a>")
	assert.NotContains(t, out, ">1.1.1<", "deprecated Kafka versions are left out")
}

func TestGenerate_LocalPath(t *testing.T) {
	outDir := t.TempDir()
	cfgPath := writeConfig(t, "output:\n  local_path: "+outDir+"\n  file: versions.html\n")

	_, err := executeCmd(t, "generate", "--config", cfgPath, "--from", snapshotDir, "--stdout=false", "--output-file", "")
	require.NoError(t, err)

	page, err := os.ReadFile(filepath.Join(outDir, "versions.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "AWS Lambda Runtimes")
}

func TestGenerate_MissingSnapshotFails(t *testing.T) {
	_, err := executeCmd(t, "generate", "--config", "", "--from", t.TempDir(), "--stdout", "--output-file", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, versionboard.ErrTransport)
	var serviceErr *versionboard.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "Amazon Lightsail blueprints", serviceErr.Service)
}

func TestGenerate_NoDestination(t *testing.T) {
	_, err := executeCmd(t, "generate", "--config", "", "--from", snapshotDir, "--stdout=false", "--output-file", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output configured")
}

func TestRunValidate_ValidConfig(t *testing.T) {
	cfgPath := writeConfig(t, `
output:
  bucket: versions-bucket
generation:
  failure_policy: isolate
  ordering: semantic
  max_concurrency: 4
`)

	out, err := executeCmd(t, "validate", "--config", cfgPath)
	require.NoError(t, err)

	for _, phrase := range []string{
		"Config is valid!",
		"Output:          s3://versions-bucket/index.html",
		"Failure policy:  isolate",
		"Ordering:        semantic",
		"Max concurrency: 4",
	} {
		assert.Contains(t, out, phrase)
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	cfgPath := writeConfig(t, "generation:\n  failure_policy: sometimes\n")

	_, err := executeCmd(t, "validate", "--config", cfgPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "generation.failure_policy")
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeCmd(t, "validate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestRunValidate_RequiresConfig(t *testing.T) {
	_, err := executeCmd(t, "validate", "--config", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config is required")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := executeCmd(t, "generate", "--config", "", "--from", snapshotDir, "--stdout", "--log-level", "loud")
	t.Cleanup(func() { _ = rootCmd.PersistentFlags().Set("log-level", "info") })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --log-level")
}
