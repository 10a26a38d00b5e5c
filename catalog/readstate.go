package catalog

import (
	"strings"
)

// ReadStateFilter is the three-way read-state constraint of the
// reading-list view.
type ReadStateFilter int

const (
	// ReadStateAll adds no read-state predicate.
	ReadStateAll ReadStateFilter = iota

	// ReadStateRead restricts to entries the caller has marked read.
	ReadStateRead

	// ReadStateNotRead restricts to entries the caller has not marked read.
	ReadStateNotRead
)

// ResolveReadStateFilter maps a raw filter value to a ReadStateFilter.
// The value is trimmed and lower-cased first; "read" and "not read" select
// their respective constraints, while "all" and every unrecognized value
// resolve to ReadStateAll.
func ResolveReadStateFilter(raw string) ReadStateFilter {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "read":
		return ReadStateRead
	case "not read":
		return ReadStateNotRead
	default:
		return ReadStateAll
	}
}
