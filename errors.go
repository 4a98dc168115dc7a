package versionboard

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure kinds. Every typed error below
// matches its sentinel with [errors.Is].
var (
	// ErrTransport reports that a raw source could not be fetched.
	ErrTransport = errors.New("transport failure")

	// ErrEmptyResult reports that an extractor produced no versions.
	ErrEmptyResult = errors.New("versions list empty")

	// ErrParse reports that a payload did not have the expected shape.
	ErrParse = errors.New("parse failure")
)

// TransportError is returned when a [Source] fails to produce a payload.
type TransportError struct {
	// Source is the ID of the source that failed.
	Source string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is [ErrTransport].
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// EmptyResultError is returned by [Validate] when a version list is empty.
type EmptyResultError struct {
	// Service is the label of the service whose list was empty, if known.
	Service string
}

func (e *EmptyResultError) Error() string {
	if e.Service == "" {
		return ErrEmptyResult.Error()
	}
	return fmt.Sprintf("%s: %s", e.Service, ErrEmptyResult.Error())
}

// Is reports whether target is [ErrEmptyResult].
func (e *EmptyResultError) Is(target error) bool { return target == ErrEmptyResult }

// ParseError is returned when an extractor cannot find what it expects in a
// payload: a missing container element, a regular expression without a
// match, invalid JSON.
type ParseError struct {
	// Rule names the extraction rule that failed (e.g. "itemized-list").
	Rule string

	// Reason describes what was missing.
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrParse.Error(), e.Rule, e.Reason)
}

// Is reports whether target is [ErrParse].
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ServiceError wraps a failure with the label of the catalog entry that was
// being processed.
type ServiceError struct {
	Service string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %q: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func parseErrorf(rule, format string, args ...any) *ParseError {
	return &ParseError{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}
