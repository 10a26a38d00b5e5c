package catalog

// TotalItemsInt64 is a type alias for int64, representing the count of all
// rows matching a view's filter predicate, independent of pagination.
type TotalItemsInt64 = int64

// PageResult holds one page of a catalog view: the items of the current page
// in the query's ORDER BY order, plus the total count of rows matching the
// same filter predicate. TotalItems is NOT the length of Items.
type PageResult[T any] struct {
	Items      []T
	TotalItems TotalItemsInt64
}
