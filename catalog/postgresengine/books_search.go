package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/sharedshelf/catalog-store-go/catalog"
)

// SearchBooks returns one page of the public search view across all books.
//
// The reading-list membership flag on each row is computed from a LEFT JOIN
// over all membership rows, not the caller's: the flag is TRUE when any user
// has the book on their reading list. A book on several reading lists appears
// once per membership row. Both behaviors are kept for compatibility with
// existing consumers of this view.
//
// The request must carry the title, authors and isbn filter keys.
func (cs CatalogStore) SearchBooks(
	ctx context.Context,
	req catalog.PageRequest,
) (catalog.PageResult[catalog.BookListItem], error) {

	empty := catalog.PageResult[catalog.BookListItem]{}

	req = req.Normalize()

	if err := req.RequireFilterKeys(catalog.FilterKeyTitle, catalog.FilterKeyAuthors, catalog.FilterKeyISBN); err != nil {
		return empty, err
	}

	queries, err := cs.buildSearchBooksQueries(req)
	if err != nil {
		return empty, err
	}

	return cs.queryBookPage(ctx, operationSearchBooks, queries, scanSearchBookRow)
}

func (cs CatalogStore) buildSearchBooksQueries(req catalog.PageRequest) (pagedQueries, error) {
	books := goqu.T(cs.booksTableName)

	base := goqu.Dialect(dialectPostgres).
		From(books).
		LeftJoin(
			goqu.T(cs.usersBooksTableName).As(aliasUsersBooks),
			goqu.On(goqu.T(aliasUsersBooks).Col(colBookID).Eq(books.Col(colID))),
		).
		LeftJoin(
			goqu.T(cs.usersTableName).As(aliasUsers),
			goqu.On(goqu.T(aliasUsers).Col(colID).Eq(goqu.T(aliasUsersBooks).Col(colUserID))),
		).
		Where(bookFilterExpressions(req, goqu.C(colTitle), goqu.C(colAuthors), goqu.C(colISBN))...)

	itemStmt := base.
		Select(
			books.Col(colID),
			goqu.C(colTitle),
			goqu.C(colAuthors),
			goqu.C(colISBN),
			goqu.C(colDescription),
			goqu.C(colCoverName),
			goqu.C(colCoverMime),
			goqu.C(colAddedBy),
			goqu.L(inListFragment).As(aliasInList),
		).
		Order(resolveOrder(resolveSortColumn(listSortColumns, listDefaultSortColumn, req.SortBy), req)).
		Limit(uint(req.Limit())).
		Offset(uint(req.Offset()))

	countStmt := base.Select(goqu.L(countAllFragment))

	return buildPagedQueries(itemStmt, countStmt)
}
