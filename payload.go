package versionboard

import (
	"context"
	"errors"
	"fmt"
)

// SourceKind identifies the shape of a raw payload.
type SourceKind string

const (
	// SourceAPI is a structured payload: a JSON document returned by a
	// service API.
	SourceAPI SourceKind = "api"

	// SourceHTML is an unstructured payload: the text of an HTML page.
	SourceHTML SourceKind = "html"
)

// String returns the string representation of the kind.
func (k SourceKind) String() string {
	return string(k)
}

// SourceRef identifies one raw source. Descriptors sharing a SourceRef ID
// share a single fetch per aggregation run.
type SourceRef struct {
	// ID is the stable identifier of the source, e.g. "rds-engine-versions".
	ID string

	// Kind is the payload shape the source produces.
	Kind SourceKind

	// URL is the page address for [SourceHTML] sources. Empty for API sources.
	URL string
}

// APISource returns a [SourceRef] for a structured API source.
func APISource(id string) SourceRef {
	return SourceRef{ID: id, Kind: SourceAPI}
}

// HTMLSource returns a [SourceRef] for an HTML page.
func HTMLSource(id, url string) SourceRef {
	return SourceRef{ID: id, Kind: SourceHTML, URL: url}
}

// RawPayload is the unprocessed data returned by a [Source]. Exactly one of
// JSON or HTML is set, according to Kind.
type RawPayload struct {
	Kind SourceKind
	JSON []byte
	HTML string
}

// StructuredPayload wraps a JSON document as a [RawPayload].
func StructuredPayload(doc []byte) RawPayload {
	return RawPayload{Kind: SourceAPI, JSON: doc}
}

// MarkupPayload wraps HTML text as a [RawPayload].
func MarkupPayload(html string) RawPayload {
	return RawPayload{Kind: SourceHTML, HTML: html}
}

// Source is the Raw Source Adapter: it returns the payload for a
// [SourceRef]. Implementations perform a single best-effort fetch per call;
// retries and caching are not their concern.
type Source interface {
	Fetch(ctx context.Context, ref SourceRef) (RawPayload, error)
}

// SourceFunc adapts an ordinary function to the [Source] interface.
type SourceFunc func(ctx context.Context, ref SourceRef) (RawPayload, error)

// Fetch calls f(ctx, ref).
func (f SourceFunc) Fetch(ctx context.Context, ref SourceRef) (RawPayload, error) {
	return f(ctx, ref)
}

// RoutedSource dispatches API refs to API and HTML refs to HTML.
type RoutedSource struct {
	API  Source
	HTML Source
}

// Fetch implements [Source].
func (r RoutedSource) Fetch(ctx context.Context, ref SourceRef) (RawPayload, error) {
	var target Source
	switch ref.Kind {
	case SourceAPI:
		target = r.API
	case SourceHTML:
		target = r.HTML
	default:
		return RawPayload{}, fmt.Errorf("unknown source kind %q for %s", ref.Kind, ref.ID)
	}
	if target == nil {
		return RawPayload{}, errors.New("no source configured for kind " + ref.Kind.String())
	}
	return target.Fetch(ctx, ref)
}
