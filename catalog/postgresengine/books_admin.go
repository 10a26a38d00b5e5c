package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/sharedshelf/catalog-store-go/catalog"
)

// AdminBooks returns one page of the caller's own books for the
// administration view. The caller is identified by email and resolved to a
// user id first, so the page query itself filters on the owner's id.
//
// The request must carry the title, authors and isbn filter keys.
func (cs CatalogStore) AdminBooks(
	ctx context.Context,
	req catalog.PageRequest,
) (catalog.PageResult[catalog.BookListItem], error) {

	empty := catalog.PageResult[catalog.BookListItem]{}

	req = req.Normalize()

	if err := req.RequireFilterKeys(catalog.FilterKeyTitle, catalog.FilterKeyAuthors, catalog.FilterKeyISBN); err != nil {
		return empty, err
	}

	if req.CallerEmail == "" {
		return empty, catalog.ErrMissingCallerEmail
	}

	ownerID, err := cs.GetUserIDByEmail(ctx, req.CallerEmail)
	if err != nil {
		return empty, err
	}

	queries, err := cs.buildAdminBooksQueries(req, ownerID)
	if err != nil {
		return empty, err
	}

	return cs.queryBookPage(ctx, operationAdminBooks, queries, scanAdminBookRow)
}

func (cs CatalogStore) buildAdminBooksQueries(req catalog.PageRequest, ownerID int64) (pagedQueries, error) {
	books := goqu.T(aliasBooks)

	where := append(
		[]exp.Expression{books.Col(colAddedBy).Eq(ownerID)},
		bookFilterExpressions(req, books.Col(colTitle), books.Col(colAuthors), books.Col(colISBN))...,
	)

	base := goqu.Dialect(dialectPostgres).
		From(goqu.T(cs.booksTableName).As(aliasBooks)).
		Where(where...)

	itemStmt := base.
		Select(
			books.Col(colID),
			books.Col(colTitle),
			books.Col(colAuthors),
			books.Col(colISBN),
			books.Col(colDescription),
			books.Col(colCoverName),
			books.Col(colCoverMime),
			books.Col(colAddedBy),
		).
		Order(resolveOrder(resolveSortColumn(adminSortColumns, adminDefaultSortColumn, req.SortBy), req)).
		Limit(uint(req.Limit())).
		Offset(uint(req.Offset()))

	countStmt := base.Select(goqu.L(countAllFragment))

	return buildPagedQueries(itemStmt, countStmt)
}
