// Package versionboard aggregates version availability for managed cloud
// services into a single, ordered report.
//
// Each reportable service is described by an immutable [ServiceDescriptor]:
// a display label, an engine key used to look up documentation, the raw
// source the versions come from and the [Extractor] that turns that source's
// payload into a list of version strings. The [Aggregator] walks a [Catalog]
// of descriptors in a fixed order, fetching every distinct source at most
// once per run, and produces a [Report] of [ReportRow] values.
//
// # Quick Start
//
//	agg, err := versionboard.NewAggregator(versionboard.DefaultCatalog(), source,
//	    versionboard.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//
//	report, err := agg.Run(ctx)
//	if err != nil {
//	    return err // fail-fast: nothing to publish
//	}
//
//	var page bytes.Buffer
//	_ = versionboard.RenderPage(&page, report)
//
// # Extraction Pipeline
//
// For every descriptor the aggregator runs the same pipeline:
//
//	payload (Source) -> Extractor -> Validate -> SortVersions -> FormatRow
//
// Two payload shapes exist. Structured payloads are JSON documents returned
// by service APIs and are read by [StructuredExtractor] values built with
// [Records], [NestedRecords], [EngineVersions], [PlatformStack] and friends. Markup
// payloads are HTML documentation pages read by [MarkupExtractor] values
// built with [ItemizedList], [TableFirstColumn] and [ProsePattern].
//
// # Ordering
//
// Engine-style versions are ordered by plain string comparison, descending
// ([OrderLexicalDescending]). This is not a numeric comparison: "9.6" sorts
// before "10.2". The order is kept because published reports depend on it;
// [OrderSemanticDescending] is available as an explicit opt-in.
//
// # Failure Policy
//
// By default the first transport, parse or empty-result failure aborts the
// run and no report is produced. [WithFailurePolicy] with [FailureIsolate]
// drops only the failing service and records a [Failure] on the report.
//
// # Serve Mode
//
// A [Board] regenerates the report on an interval and serves the latest
// successful one over HTTP, with a JSON API, server-sent events and
// Prometheus metrics. The page template is embedded from package page.
//
// # Architecture
//
// The internal packages (under internal/) provide the collaborators:
//
//   - internal/fetch: HTTP client and the HTML page source
//   - internal/awsapi: structured sources backed by the AWS SDK
//   - internal/snapshot: recorded payloads for offline runs
//   - internal/publish: S3 upload with CloudFront invalidation, local files
//   - internal/notify: SNS error notification
//   - internal/linkcheck: documentation URL checks
//   - internal/store and internal/server: serve mode used by [Board]
package versionboard
