package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/sharedshelf/catalog-store-go/catalog"
)

// ReadingListBooks returns one page of the caller's personal reading list,
// scoped by the caller's email and optionally narrowed to read or unread
// entries through the isReadFilter filter value.
//
// The request must carry the title, authors, isbn and isReadFilter filter keys.
func (cs CatalogStore) ReadingListBooks(
	ctx context.Context,
	req catalog.PageRequest,
) (catalog.PageResult[catalog.BookListItem], error) {

	empty := catalog.PageResult[catalog.BookListItem]{}

	req = req.Normalize()

	err := req.RequireFilterKeys(
		catalog.FilterKeyTitle,
		catalog.FilterKeyAuthors,
		catalog.FilterKeyISBN,
		catalog.FilterKeyIsRead,
	)
	if err != nil {
		return empty, err
	}

	if req.CallerEmail == "" {
		return empty, catalog.ErrMissingCallerEmail
	}

	queries, err := cs.buildReadingListBooksQueries(req)
	if err != nil {
		return empty, err
	}

	return cs.queryBookPage(ctx, operationReadingListBooks, queries, scanReadingListBookRow)
}

func (cs CatalogStore) buildReadingListBooksQueries(req catalog.PageRequest) (pagedQueries, error) {
	books := goqu.T(cs.booksTableName)

	where := append(
		[]exp.Expression{goqu.T(aliasUsers).Col(colEmail).Eq(req.CallerEmail)},
		bookFilterExpressions(req, goqu.C(colTitle), goqu.C(colAuthors), goqu.C(colISBN))...,
	)
	where = append(where, readStateExpressions(req)...)

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
		Where(where...)

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
			goqu.T(aliasUsersBooks).Col(colIsRead),
		).
		Order(resolveOrder(resolveSortColumn(listSortColumns, listDefaultSortColumn, req.SortBy), req)).
		Limit(uint(req.Limit())).
		Offset(uint(req.Offset()))

	countStmt := base.Select(goqu.L(countAllFragment))

	return buildPagedQueries(itemStmt, countStmt)
}
