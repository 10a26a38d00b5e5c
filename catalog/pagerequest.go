package catalog

import (
	"errors"
	"fmt"
	"strings"
)

type FilterKeyString = string
type SortDirectionString = string

// Filter keys understood by the catalog views.
const (
	FilterKeyTitle   FilterKeyString = "title"
	FilterKeyAuthors FilterKeyString = "authors"
	FilterKeyISBN    FilterKeyString = "isbn"
	FilterKeyIsRead  FilterKeyString = "isReadFilter"
)

// SortDescending is the only direction string that sorts descending.
// The comparison is exact and case-sensitive; every other value, including
// an empty string, sorts ascending.
const (
	SortAscending  SortDirectionString = "Ascending"
	SortDescending SortDirectionString = "Descending"
)

// DefaultPageSize is applied whenever the requested page size is not one of
// the allowed sizes.
const DefaultPageSize = 5

var allowedPageSizes = []int{5, 10, 20, 50}

// PageRequest describes one page of a catalog view as requested by a caller.
// The zero value is usable: Normalize turns it into a request for the first
// page of DefaultPageSize items sorted by the view's default column.
//
// Filters maps filter keys to raw filter values. Views require specific keys
// to be present (see RequireFilterKeys); a present-but-empty value means
// "no constraint" for most filters.
type PageRequest struct {
	Page          int
	PageSize      int
	SortBy        string
	SortDirection SortDirectionString
	Filters       map[string]string
	CallerEmail   string
}

// Normalize returns a copy of the request with query-safe paging values:
// the page size clamped to one of {5, 10, 20, 50} (defaulting to 5), the
// page number coerced to at least 1, every filter value trimmed of
// surrounding whitespace, and the caller email normalized.
// It performs no I/O and never fails.
func (pr PageRequest) Normalize() PageRequest {
	normalized := pr

	normalized.PageSize = DefaultPageSize
	for _, size := range allowedPageSizes {
		if pr.PageSize == size {
			normalized.PageSize = size
			break
		}
	}

	if pr.Page < 1 {
		normalized.Page = 1
	}

	if pr.Filters != nil {
		filters := make(map[string]string, len(pr.Filters))
		for key, val := range pr.Filters {
			filters[key] = strings.TrimSpace(val)
		}
		normalized.Filters = filters
	}

	normalized.CallerEmail = NormalizeEmail(pr.CallerEmail)

	return normalized
}

// RequireFilterKeys fails with ErrMissingFilterKey if any of the given keys
// is absent from the filter map. Presence is checked, not emptiness: an
// empty value is a valid "match everything" filter.
func (pr PageRequest) RequireFilterKeys(keys ...FilterKeyString) error {
	for _, key := range keys {
		if _, ok := pr.Filters[key]; !ok {
			return errors.Join(ErrMissingFilterKey, fmt.Errorf("filter key %q was not supplied", key))
		}
	}

	return nil
}

// Filter returns the trimmed value for the given filter key, or the empty
// string when the key is absent.
func (pr PageRequest) Filter(key FilterKeyString) string {
	return strings.TrimSpace(pr.Filters[key])
}

// IsDescending reports whether the request sorts descending.
func (pr PageRequest) IsDescending() bool {
	return pr.SortDirection == SortDescending
}

// Limit returns the number of rows for the item statement.
func (pr PageRequest) Limit() int {
	return pr.PageSize
}

// Offset returns the number of rows to skip for the item statement.
// It expects a normalized request; for page 1 the offset is always 0.
func (pr PageRequest) Offset() int {
	return (pr.Page - 1) * pr.PageSize
}
