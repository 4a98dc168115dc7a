package versionboard

import (
	"fmt"
	"sort"

	"github.com/git-pkgs/vers"
)

// Validate enforces the non-empty invariant on an extractor's output. It
// returns an [*EmptyResultError] for an empty list and the list unchanged
// otherwise.
func Validate(versions []string) ([]string, error) {
	if len(versions) == 0 {
		return nil, &EmptyResultError{}
	}
	return versions, nil
}

// Ordering selects how a service's versions are ordered in the report.
type Ordering string

const (
	// OrderSource keeps versions in the order the source listed them.
	OrderSource Ordering = "source"

	// OrderLexicalDescending sorts versions by plain string comparison,
	// descending. Multi-digit components sort wrongly ("9.6" before "10.2");
	// the order is kept because existing reports depend on it.
	OrderLexicalDescending Ordering = "lexical"

	// OrderSemanticDescending sorts versions by version comparison,
	// descending ("10.2" before "9.6"). Opt-in only.
	OrderSemanticDescending Ordering = "semantic"
)

// String returns the string representation of the ordering.
func (o Ordering) String() string {
	return string(o)
}

// ParseOrdering parses an ordering name as used in configuration.
func ParseOrdering(s string) (Ordering, error) {
	switch o := Ordering(s); o {
	case OrderSource, OrderLexicalDescending, OrderSemanticDescending:
		return o, nil
	default:
		return "", fmt.Errorf("unknown ordering %q (expected 'source', 'lexical' or 'semantic')", s)
	}
}

// SortVersions de-duplicates versions and orders them. De-duplication keeps
// the first occurrence, so [OrderSource] preserves source order. The input
// slice is not modified.
//
// Example:
//
//	versionboard.SortVersions([]string{"9.6", "10.1", "10.2"}, versionboard.OrderLexicalDescending)
//	// ["9.6", "10.2", "10.1"]
func SortVersions(versions []string, ordering Ordering) []string {
	out := dedupe(versions)

	switch ordering {
	case OrderLexicalDescending:
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	case OrderSemanticDescending:
		sort.SliceStable(out, func(i, j int) bool {
			if c := vers.Compare(out[i], out[j]); c != 0 {
				return c > 0
			}
			// equal by version rules: fall back to strings for a total order
			return out[i] > out[j]
		})
	}
	return out
}

// dedupe returns the distinct values of versions in first-seen order.
func dedupe(versions []string) []string {
	seen := make(map[string]struct{}, len(versions))
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
