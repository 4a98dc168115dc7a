// Package awsapi is the structured Raw Source Adapter of versionboard. It
// calls the AWS service APIs that list engine and runtime versions and
// returns each answer as a JSON document keyed the way the APIs name their
// fields (Blueprints, BrokerEngineTypes, DBEngineVersions, ...), with every
// page of a paginated API merged into one document.
//
// Service clients are held behind narrow interfaces so tests can substitute
// fakes.
package awsapi
