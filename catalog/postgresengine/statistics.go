package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/sharedshelf/catalog-store-go/catalog"
	"github.com/sharedshelf/catalog-store-go/catalog/postgresengine/internal/adapters"
)

// Statistics aggregates the four dashboard counters for one user: total books
// in the catalog, books the user added, books on the user's reading list, and
// books the user has marked as read. All four counts run as one batch, a
// single network round trip on pgx.
func (cs CatalogStore) Statistics(ctx context.Context, callerEmail string) (catalog.BookStatistics, error) {
	empty := catalog.BookStatistics{}

	email := catalog.NormalizeEmail(callerEmail)
	if email == "" {
		return empty, catalog.ErrMissingCallerEmail
	}

	queries, err := cs.buildStatisticsQueries(email)
	if err != nil {
		return empty, err
	}

	ctx, span := cs.startTraceSpan(ctx, operationStatistics)
	start := time.Now()

	batch, err := cs.db.QueryBatch(ctx, queries)
	if err != nil {
		wrapped := errors.Join(catalog.ErrQueryingBooksFailed, err)
		cs.observeStatementError(ctx, span, operationStatistics, wrapped)

		return empty, wrapped
	}
	defer cs.closeBatch(ctx, batch)

	counts := make([]int64, 0, len(queries))

	for range queries {
		count, collectErr := cs.collectTotalCount(batch)
		if collectErr != nil {
			cs.observeStatementError(ctx, span, operationStatistics, collectErr)

			return empty, collectErr
		}

		counts = append(counts, int64(count))
	}

	cs.observeStatementSuccess(ctx, span, operationStatistics, time.Since(start))

	return catalog.BookStatistics{
		TotalBooks:       counts[0],
		UserBooks:        counts[1],
		ReadingListBooks: counts[2],
		BooksRead:        counts[3],
	}, nil
}

func (cs CatalogStore) buildStatisticsQueries(email string) ([]adapters.BatchQuery, error) {
	dialect := goqu.Dialect(dialectPostgres)

	userIDSubquery := dialect.
		From(cs.usersTableName).
		Select(goqu.C(colID)).
		Where(goqu.C(colEmail).Eq(email))

	totalBooksStmt := dialect.
		From(cs.booksTableName).
		Select(goqu.L(countAllFragment))

	userBooksStmt := dialect.
		From(cs.booksTableName).
		Select(goqu.L(countAllFragment)).
		Where(goqu.C(colAddedBy).Eq(userIDSubquery))

	listBase := dialect.
		From(goqu.T(cs.usersBooksTableName).As(aliasUsersBooks)).
		Join(
			goqu.T(cs.usersTableName).As(aliasUsers),
			goqu.On(goqu.T(aliasUsers).Col(colID).Eq(goqu.T(aliasUsersBooks).Col(colUserID))),
		).
		Where(goqu.T(aliasUsers).Col(colEmail).Eq(email))

	readingListStmt := listBase.Select(goqu.L(countAllFragment))

	booksReadStmt := listBase.
		Select(goqu.L(countAllFragment)).
		Where(goqu.T(aliasUsersBooks).Col(colIsRead).IsTrue())

	statements := []*goqu.SelectDataset{totalBooksStmt, userBooksStmt, readingListStmt, booksReadStmt}
	queries := make([]adapters.BatchQuery, 0, len(statements))

	for _, stmt := range statements {
		sqlText, args, err := stmt.Prepared(true).ToSQL()
		if err != nil {
			return nil, errors.Join(catalog.ErrBuildingQueryFailed, err)
		}

		queries = append(queries, adapters.BatchQuery{SQL: sqlText, Args: args})
	}

	return queries, nil
}
