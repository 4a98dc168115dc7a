package versionboard

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Extractor maps one [RawPayload] to a raw list of version identifiers.
//
// Extractors are pure: the same payload always produces the same list, and
// no state is kept between calls. An extractor may return an empty list;
// rejecting it is the job of [Validate].
//
// Two implementations exist, one per payload shape: [StructuredExtractor]
// for API payloads and [MarkupExtractor] for HTML pages. Kind reports which
// payload shape the extractor accepts; a descriptor whose source kind does
// not match its extractor's kind is rejected by [NewServiceDescriptor].
type Extractor interface {
	Kind() SourceKind
	Extract(payload RawPayload) ([]string, error)
}

// Predicate selects records of a structured payload.
type Predicate func(record gjson.Result) bool

// Projection turns a selected record into a version string. The boolean is
// false when the record has nothing to contribute.
type Projection func(record gjson.Result) (string, bool)

// StructuredExtractor reads versions out of a JSON payload.
type StructuredExtractor struct {
	rule string
	fn   func(doc gjson.Result) ([]string, error)
}

// Kind returns [SourceAPI].
func (e StructuredExtractor) Kind() SourceKind { return SourceAPI }

// Rule returns the name of the extraction rule, used in errors and logs.
func (e StructuredExtractor) Rule() string { return e.rule }

// Extract implements [Extractor].
func (e StructuredExtractor) Extract(payload RawPayload) ([]string, error) {
	if payload.Kind != SourceAPI {
		return nil, parseErrorf(e.rule, "expected an api payload, got %q", payload.Kind)
	}
	if !gjson.ValidBytes(payload.JSON) {
		return nil, parseErrorf(e.rule, "payload is not valid JSON")
	}
	return e.fn(gjson.ParseBytes(payload.JSON))
}

// Records returns a [StructuredExtractor] that walks the array at
// recordsPath, keeps the records matching where, and projects each of them
// with project. A missing array is a [ParseError].
//
// Example:
//
//	// {"KafkaVersions": [{"Version": "3.6.0", "Status": "ACTIVE"}, ...]}
//	ex := versionboard.Records("kafka-versions", "KafkaVersions",
//	    versionboard.Equals("Status", "ACTIVE"),
//	    versionboard.Field("Version"),
//	)
func Records(rule, recordsPath string, where Predicate, project Projection) StructuredExtractor {
	return StructuredExtractor{
		rule: rule,
		fn: func(doc gjson.Result) ([]string, error) {
			records := doc.Get(recordsPath)
			if !records.IsArray() {
				return nil, parseErrorf(rule, "no %q array in payload", recordsPath)
			}
			return selectAndProject(records, where, project), nil
		},
	}
}

// NestedRecords is like [Records] but projects every element of the nested
// array found at nestedPath inside each matching record.
//
// Example:
//
//	// {"BrokerEngineTypes": [{"EngineType": "RABBITMQ",
//	//     "EngineVersions": [{"Name": "3.13"}]}]}
//	ex := versionboard.NestedRecords("mq-rabbitmq", "BrokerEngineTypes",
//	    versionboard.Equals("EngineType", "RABBITMQ"),
//	    "EngineVersions", versionboard.Field("Name"),
//	)
func NestedRecords(rule, recordsPath string, where Predicate, nestedPath string, project Projection) StructuredExtractor {
	return StructuredExtractor{
		rule: rule,
		fn: func(doc gjson.Result) ([]string, error) {
			records := doc.Get(recordsPath)
			if !records.IsArray() {
				return nil, parseErrorf(rule, "no %q array in payload", recordsPath)
			}
			var versions []string
			records.ForEach(func(_, record gjson.Result) bool {
				if where != nil && !where(record) {
					return true
				}
				versions = append(versions, selectAndProject(record.Get(nestedPath), nil, project)...)
				return true
			})
			return versions, nil
		},
	}
}

// Strings returns a [StructuredExtractor] for a payload whose versions are a
// plain array of strings, such as {"Versions": ["OpenSearch_2.11", ...]}.
func Strings(rule, path string) StructuredExtractor {
	return Records(rule, path, nil, Self())
}

// engineVersionKeys are the record arrays searched by [EngineVersions], in
// order: database engines first, then cache engines.
var engineVersionKeys = []string{"DBEngineVersions", "CacheEngineVersions"}

// EngineVersions returns the EngineVersion of every record whose Engine
// equals engine. It reads whichever of the "DBEngineVersions" and
// "CacheEngineVersions" arrays the payload carries, so the same extractor
// serves database and cache engine listings.
func EngineVersions(engine string) StructuredExtractor {
	rule := "engine-versions:" + engine
	return StructuredExtractor{
		rule: rule,
		fn: func(doc gjson.Result) ([]string, error) {
			for _, key := range engineVersionKeys {
				records := doc.Get(key)
				if records.IsArray() {
					return selectAndProject(records, Equals("Engine", engine), Field("EngineVersion")), nil
				}
			}
			return nil, parseErrorf(rule, "payload has none of %v", engineVersionKeys)
		},
	}
}

// EngineNames returns the Engine of every record in "DBEngineVersions", in
// source order. Duplicates are kept; the sorter collapses them.
func EngineNames() StructuredExtractor {
	return Records("engine-names", "DBEngineVersions", nil, Field("Engine"))
}

// PlatformStack returns the versions of platform found in an array of
// solution stack labels such as "64bit Amazon Linux 2 running Python 3.8".
// Labels containing platform are matched against "running <platform>(.+)";
// labels that contain the platform but do not match are skipped.
func PlatformStack(path, platform string) StructuredExtractor {
	pattern := platformPattern(platform)
	return Records("platform-stack:"+strings.TrimSpace(platform), path,
		func(record gjson.Result) bool {
			return strings.Contains(record.String(), platform)
		},
		func(record gjson.Result) (string, bool) {
			return matchPlatform(pattern, record.String())
		},
	)
}

// PlatformVersion extracts the version suffix of a solution stack label for
// the given platform prefix. The platform is expected to carry its trailing
// separator, e.g. "Python " or "Node.js ".
func PlatformVersion(label, platform string) (string, bool) {
	if !strings.Contains(label, platform) {
		return "", false
	}
	return matchPlatform(platformPattern(platform), label)
}

func platformPattern(platform string) *regexp.Regexp {
	return regexp.MustCompile("running " + regexp.QuoteMeta(platform) + "(.+)")
}

func matchPlatform(pattern *regexp.Regexp, label string) (string, bool) {
	m := pattern.FindStringSubmatch(label)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// Equals matches records whose field equals value.
func Equals(field, value string) Predicate {
	return func(record gjson.Result) bool {
		return record.Get(field).String() == value
	}
}

// All matches records satisfying every predicate.
func All(predicates ...Predicate) Predicate {
	return func(record gjson.Result) bool {
		for _, p := range predicates {
			if !p(record) {
				return false
			}
		}
		return true
	}
}

// Field projects a string field of a record. Missing or empty fields are
// skipped.
func Field(name string) Projection {
	return func(record gjson.Result) (string, bool) {
		v := record.Get(name)
		if !v.Exists() || v.String() == "" {
			return "", false
		}
		return v.String(), true
	}
}

// JoinFields projects several fields joined with sep, e.g. a blueprint name
// and its version. The record is skipped if any field is missing.
func JoinFields(sep string, names ...string) Projection {
	return func(record gjson.Result) (string, bool) {
		parts := make([]string, 0, len(names))
		for _, name := range names {
			v := record.Get(name)
			if !v.Exists() {
				return "", false
			}
			parts = append(parts, v.String())
		}
		return strings.Join(parts, sep), true
	}
}

// Self projects the record itself, for arrays of plain strings.
func Self() Projection {
	return func(record gjson.Result) (string, bool) {
		s := record.String()
		return s, s != ""
	}
}

func selectAndProject(records gjson.Result, where Predicate, project Projection) []string {
	var versions []string
	records.ForEach(func(_, record gjson.Result) bool {
		if where != nil && !where(record) {
			return true
		}
		if v, ok := project(record); ok {
			versions = append(versions, v)
		}
		return true
	})
	return versions
}
