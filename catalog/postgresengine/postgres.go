package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // postgres dialect for goqu
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/sharedshelf/catalog-store-go/catalog"
	"github.com/sharedshelf/catalog-store-go/catalog/postgresengine/internal/adapters"
)

const (
	defaultUsersTableName      = "users"
	defaultBooksTableName      = "books"
	defaultUsersBooksTableName = "usersBooks"

	dialectPostgres = "postgres"

	colID          = "id"
	colTitle       = "title"
	colAuthors     = "authors"
	colISBN        = "isbn"
	colDescription = "description"
	colCover       = "cover"
	colCoverName   = "coverName"
	colCoverMime   = "coverMime"
	colFile        = "file"
	colFileName    = "fileName"
	colAddedBy     = "addedBy"
	colUserName    = "userName"
	colEmail       = "email"
	colPassword    = "password"
	colSalt        = "salt"
	colIsRead      = "isRead"
	colUserID      = "userId"
	colBookID      = "bookId"

	aliasBooks      = "b"
	aliasUsersBooks = "ub"
	aliasUsers      = "u"
	aliasInList     = "isInReadingList"

	countAllFragment = "COUNT(1)"
	inListFragment   = `CASE WHEN "u"."email" IS NULL THEN FALSE ELSE TRUE END`
)

// Log message constants.
const (
	logMsgPagedQueryCompleted = "catalogstore: paged query completed"
	logMsgStatementCompleted  = "catalogstore: statement completed"
	logMsgClosingRowsFailed   = "catalogstore: closing rows failed"
	logMsgClosingBatchFailed  = "catalogstore: closing batch results failed"
	logMsgRollbackFailed      = "catalogstore: transaction rollback failed"

	logAttrDurationMS = "durationMS"
	logAttrOperation  = "operation"
	logAttrError      = "error"
)

// Operation name constants used in logs, metrics and trace spans.
const (
	operationAdminBooks       = "catalogstore.admin_books"
	operationSearchBooks      = "catalogstore.search_books"
	operationReadingListBooks = "catalogstore.reading_list_books"
	operationStatistics       = "catalogstore.statistics"
	operationAddBook          = "catalogstore.add_book"
	operationGetBookByID      = "catalogstore.get_book_by_id"
	operationDeleteBook       = "catalogstore.delete_book"
	operationAddUser          = "catalogstore.add_user"
	operationGetUserID        = "catalogstore.get_user_id_by_email"
	operationEnsureAnonymous  = "catalogstore.ensure_anonymous_user"
	operationAddToList        = "catalogstore.add_to_reading_list"
	operationRemoveFromList   = "catalogstore.remove_from_reading_list"
	operationMarkRead         = "catalogstore.mark_read"
	operationIsRead           = "catalogstore.is_read"
	operationRemoveUser       = "catalogstore.remove_user"
)

// Metric name constants.
const (
	metricQueryDuration     = "catalogstore_query_duration_seconds"
	metricQueryErrors       = "catalogstore_query_errors_total"
	metricStatementDuration = "catalogstore_statement_duration_seconds"
	metricStatementErrors   = "catalogstore_statement_errors_total"
	metricItemsReturned     = "catalogstore_items_returned"

	statusSuccess = "success"
	statusError   = "error"
)

// CatalogStore is the PostgreSQL implementation of the shared library catalog.
// It serves paged book views, a statistics aggregation, and the write
// operations that maintain users, books and reading-list memberships.
type CatalogStore struct {
	db                  adapters.DBAdapter
	usersTableName      string
	booksTableName      string
	usersBooksTableName string
	logger              catalog.Logger
	contextualLogger    catalog.ContextualLogger
	metricsCollector    catalog.MetricsCollector
	tracingCollector    catalog.TracingCollector
}

// NewCatalogStoreFromPGXPool creates a CatalogStore using a pgx connection pool.
// With pgx the paged views and the statistics aggregation run their statements
// in a single network round trip via the pgx batch protocol.
func NewCatalogStoreFromPGXPool(pool *pgxpool.Pool, options ...Option) (CatalogStore, error) {
	if pool == nil {
		return CatalogStore{}, catalog.ErrNilDatabaseConnection
	}

	return newCatalogStore(adapters.NewPGXAdapter(pool), options...)
}

// NewCatalogStoreFromPGXPoolWithReplica creates a CatalogStore using a primary
// pgx pool for writes and a replica pool for read operations.
func NewCatalogStoreFromPGXPoolWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (CatalogStore, error) {
	if pool == nil || replica == nil {
		return CatalogStore{}, catalog.ErrNilDatabaseConnection
	}

	return newCatalogStore(adapters.NewPGXAdapterWithReplica(pool, replica), options...)
}

// NewCatalogStoreFromSQLDB creates a CatalogStore using a database/sql DB.
func NewCatalogStoreFromSQLDB(db *sql.DB, options ...Option) (CatalogStore, error) {
	if db == nil {
		return CatalogStore{}, catalog.ErrNilDatabaseConnection
	}

	return newCatalogStore(adapters.NewSQLAdapter(db), options...)
}

// NewCatalogStoreFromSQLX creates a CatalogStore using a sqlx DB.
func NewCatalogStoreFromSQLX(db *sqlx.DB, options ...Option) (CatalogStore, error) {
	if db == nil {
		return CatalogStore{}, catalog.ErrNilDatabaseConnection
	}

	return newCatalogStore(adapters.NewSQLXAdapter(db), options...)
}

func newCatalogStore(adapter adapters.DBAdapter, options ...Option) (CatalogStore, error) {
	store := CatalogStore{
		db:                  adapter,
		usersTableName:      defaultUsersTableName,
		booksTableName:      defaultBooksTableName,
		usersBooksTableName: defaultUsersBooksTableName,
	}

	for _, option := range options {
		if err := option(&store); err != nil {
			return CatalogStore{}, err
		}
	}

	return store, nil
}

// pagedQueries holds the item statement and the count statement of one view,
// both derived from the same predicate so they can never disagree.
type pagedQueries struct {
	items adapters.BatchQuery
	count adapters.BatchQuery
}

func buildPagedQueries(itemStmt *goqu.SelectDataset, countStmt *goqu.SelectDataset) (pagedQueries, error) {
	itemSQL, itemArgs, err := itemStmt.Prepared(true).ToSQL()
	if err != nil {
		return pagedQueries{}, errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	countSQL, countArgs, err := countStmt.Prepared(true).ToSQL()
	if err != nil {
		return pagedQueries{}, errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	return pagedQueries{
		items: adapters.BatchQuery{SQL: itemSQL, Args: itemArgs},
		count: adapters.BatchQuery{SQL: countSQL, Args: countArgs},
	}, nil
}

// bookRowScanFunc scans one row of a view's item result set into a list item.
type bookRowScanFunc func(rows adapters.DBRows) (catalog.BookListItem, error)

// queryBookPage executes the item and count statements of a view as one batch
// and assembles the page result.
func (cs CatalogStore) queryBookPage(
	ctx context.Context,
	operation string,
	queries pagedQueries,
	scanRow bookRowScanFunc,
) (catalog.PageResult[catalog.BookListItem], error) {

	empty := catalog.PageResult[catalog.BookListItem]{}

	ctx, span := cs.startTraceSpan(ctx, operation)
	start := time.Now()

	batch, err := cs.db.QueryBatch(ctx, []adapters.BatchQuery{queries.items, queries.count})
	if err != nil {
		wrapped := errors.Join(catalog.ErrQueryingBooksFailed, err)
		cs.observeQueryError(ctx, span, operation, wrapped)

		return empty, wrapped
	}
	defer cs.closeBatch(ctx, batch)

	items, err := cs.collectBookItems(batch, scanRow)
	if err != nil {
		cs.observeQueryError(ctx, span, operation, err)

		return empty, err
	}

	total, err := cs.collectTotalCount(batch)
	if err != nil {
		cs.observeQueryError(ctx, span, operation, err)

		return empty, err
	}

	cs.observeQuerySuccess(ctx, span, operation, time.Since(start), len(items))

	return catalog.PageResult[catalog.BookListItem]{Items: items, TotalItems: total}, nil
}

func (cs CatalogStore) collectBookItems(batch adapters.DBBatchResults, scanRow bookRowScanFunc) ([]catalog.BookListItem, error) {
	rows, err := batch.Query()
	if err != nil {
		return nil, errors.Join(catalog.ErrQueryingBooksFailed, err)
	}
	defer cs.closeRows(context.Background(), rows)

	items := make([]catalog.BookListItem, 0)

	for rows.Next() {
		item, scanErr := scanRow(rows)
		if scanErr != nil {
			return nil, errors.Join(catalog.ErrScanningDBRowFailed, scanErr)
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Join(catalog.ErrQueryingBooksFailed, err)
	}

	return items, nil
}

func (cs CatalogStore) collectTotalCount(batch adapters.DBBatchResults) (catalog.TotalItemsInt64, error) {
	rows, err := batch.Query()
	if err != nil {
		return 0, errors.Join(catalog.ErrQueryingBooksFailed, err)
	}
	defer cs.closeRows(context.Background(), rows)

	var total int64

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return 0, errors.Join(catalog.ErrQueryingBooksFailed, err)
		}

		return 0, errors.Join(catalog.ErrScanningDBRowFailed, errors.New("count result set is empty"))
	}

	if err = rows.Scan(&total); err != nil {
		return 0, errors.Join(catalog.ErrScanningDBRowFailed, err)
	}

	return catalog.TotalItemsInt64(total), nil
}

func (cs CatalogStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		cs.logError(ctx, logMsgClosingRowsFailed, err)
	}
}

func (cs CatalogStore) closeBatch(ctx context.Context, batch adapters.DBBatchResults) {
	if err := batch.Close(); err != nil {
		cs.logError(ctx, logMsgClosingBatchFailed, err)
	}
}

// assignNullableBookColumns copies optional text columns into the item, mapping
// SQL NULL to the empty string.
func assignNullableBookColumns(item *catalog.BookListItem, isbn, description, coverName, coverMime sql.NullString) {
	item.ISBN = isbn.String
	item.Description = description.String
	item.CoverName = coverName.String
	item.CoverMime = coverMime.String
}

func scanAdminBookRow(rows adapters.DBRows) (catalog.BookListItem, error) {
	var item catalog.BookListItem
	var isbn, description, coverName, coverMime sql.NullString

	err := rows.Scan(
		&item.ID, &item.Title, &item.Authors,
		&isbn, &description, &coverName, &coverMime, &item.AddedBy,
	)
	if err != nil {
		return catalog.BookListItem{}, err
	}

	assignNullableBookColumns(&item, isbn, description, coverName, coverMime)

	return item, nil
}

func scanSearchBookRow(rows adapters.DBRows) (catalog.BookListItem, error) {
	var item catalog.BookListItem
	var isbn, description, coverName, coverMime sql.NullString

	err := rows.Scan(
		&item.ID, &item.Title, &item.Authors,
		&isbn, &description, &coverName, &coverMime, &item.AddedBy,
		&item.IsInReadingList,
	)
	if err != nil {
		return catalog.BookListItem{}, err
	}

	assignNullableBookColumns(&item, isbn, description, coverName, coverMime)

	return item, nil
}

func scanReadingListBookRow(rows adapters.DBRows) (catalog.BookListItem, error) {
	var item catalog.BookListItem
	var isbn, description, coverName, coverMime sql.NullString
	var isRead sql.NullBool

	err := rows.Scan(
		&item.ID, &item.Title, &item.Authors,
		&isbn, &description, &coverName, &coverMime, &item.AddedBy,
		&item.IsInReadingList, &isRead,
	)
	if err != nil {
		return catalog.BookListItem{}, err
	}

	assignNullableBookColumns(&item, isbn, description, coverName, coverMime)
	item.IsRead = isRead.Bool

	return item, nil
}
