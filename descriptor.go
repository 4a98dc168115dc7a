package versionboard

import (
	"errors"
	"fmt"
	"strings"
)

// ServiceDescriptor describes one reportable service and how its versions
// are extracted.
//
// ServiceDescriptor is immutable after creation via [NewServiceDescriptor].
// All fields are private with getter methods.
//
// A descriptor usually produces rows for a single service. A descriptor
// built with [WithFanOut] instead produces one group of rows per key found
// in its payload; the RDS entry uses this to report every database engine
// returned by the API without listing them in the catalog.
type ServiceDescriptor struct {
	name      string
	engineKey string
	source    SourceRef
	extractor Extractor
	ordering  Ordering
	fanOut    *fanOut
}

type fanOut struct {
	keys   Extractor
	perKey func(key string) Extractor
}

// Name returns the service label displayed in the report.
func (d ServiceDescriptor) Name() string {
	return d.name
}

// EngineKey returns the key used to look up the documentation URL. Empty
// when the service has no documentation entry.
func (d ServiceDescriptor) EngineKey() string {
	return d.engineKey
}

// Source returns the raw source the versions are read from.
func (d ServiceDescriptor) Source() SourceRef {
	return d.source
}

// SourceKind returns the payload shape of the descriptor's source.
func (d ServiceDescriptor) SourceKind() SourceKind {
	return d.source.Kind
}

// Extractor returns the descriptor's extractor. For fan-out descriptors this
// is the extractor listing the keys.
func (d ServiceDescriptor) Extractor() Extractor {
	return d.extractor
}

// Ordering returns the ordering applied to the versions of each row group.
func (d ServiceDescriptor) Ordering() Ordering {
	return d.ordering
}

// IsFanOut reports whether the descriptor expands into one row group per key.
func (d ServiceDescriptor) IsFanOut() bool {
	return d.fanOut != nil
}

// NewServiceDescriptor creates a [ServiceDescriptor] reading source with
// extractor.
//
// Defaults: no engine key, [OrderSource].
//
// Returns an error if the name is empty, the source has no ID, the
// extractor is nil, or the extractor's kind does not match the source kind.
//
// Example:
//
//	d, err := versionboard.NewServiceDescriptor("Amazon ElastiCache redis",
//	    versionboard.APISource("elasticache-engine-versions"),
//	    versionboard.EngineVersions("redis"),
//	    versionboard.WithEngineKey("redis"),
//	    versionboard.WithOrdering(versionboard.OrderLexicalDescending),
//	)
func NewServiceDescriptor(name string, source SourceRef, extractor Extractor, opts ...DescriptorOption) (ServiceDescriptor, error) {
	if strings.TrimSpace(name) == "" {
		return ServiceDescriptor{}, errors.New("service name cannot be empty")
	}
	if source.ID == "" {
		return ServiceDescriptor{}, fmt.Errorf("service %q: source ID cannot be empty", name)
	}
	if source.Kind == SourceHTML && source.URL == "" {
		return ServiceDescriptor{}, fmt.Errorf("service %q: html source %q needs a URL", name, source.ID)
	}
	if extractor == nil {
		return ServiceDescriptor{}, fmt.Errorf("service %q: extractor cannot be nil", name)
	}
	if extractor.Kind() != source.Kind {
		return ServiceDescriptor{}, fmt.Errorf("service %q: %s extractor cannot read %s source %q",
			name, extractor.Kind(), source.Kind, source.ID)
	}

	cfg := &descriptorConfig{ordering: OrderSource}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return ServiceDescriptor{}, fmt.Errorf("service %q: %w", name, err)
		}
	}

	d := ServiceDescriptor{
		name:      name,
		engineKey: cfg.engineKey,
		source:    source,
		extractor: extractor,
		ordering:  cfg.ordering,
	}
	if cfg.perKey != nil {
		d.fanOut = &fanOut{keys: extractor, perKey: cfg.perKey}
	}
	return d, nil
}

// MustServiceDescriptor is like [NewServiceDescriptor] but panics on error.
// Use it for hard-coded catalogs.
func MustServiceDescriptor(name string, source SourceRef, extractor Extractor, opts ...DescriptorOption) ServiceDescriptor {
	d, err := NewServiceDescriptor(name, source, extractor, opts...)
	if err != nil {
		panic("versionboard: " + err.Error())
	}
	return d
}
