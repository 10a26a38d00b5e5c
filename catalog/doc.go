// Package catalog provides core abstractions and types for the shared
// library catalog query engine.
//
// This package defines the types used across store implementations:
// page requests with input normalization, paged results, row shapes for
// the three catalog views, the read-state filter, statistics values, and
// common error definitions.
//
// A page request carries untrusted input (page size, page number, sort key,
// sort direction, free-text filters); Normalize is the only place where that
// input becomes query-safe:
//
//	req := catalog.PageRequest{
//		Page:     2,
//		PageSize: 10,
//		SortBy:   "authors",
//		Filters: map[string]string{
//			catalog.FilterKeyTitle:   "domain",
//			catalog.FilterKeyAuthors: "",
//			catalog.FilterKeyISBN:    "",
//		},
//		CallerEmail: "reader@example.com",
//	}
//
//	page, err := store.SearchBooks(ctx, req)
//	if err != nil {
//		// handle error
//	}
//	fmt.Println(page.TotalItems, len(page.Items))
package catalog
