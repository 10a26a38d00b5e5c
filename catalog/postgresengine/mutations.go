package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/sharedshelf/catalog-store-go/catalog"
	"github.com/sharedshelf/catalog-store-go/catalog/postgresengine/internal/adapters"
)

// AddBook stores a new book and returns its generated id.
func (cs CatalogStore) AddBook(ctx context.Context, book catalog.Book) (int64, error) {
	dialect := goqu.Dialect(dialectPostgres)

	stmt := dialect.
		Insert(cs.booksTableName).
		Rows(goqu.Record{
			colTitle:       book.Title,
			colAuthors:     book.Authors,
			colISBN:        book.ISBN,
			colDescription: book.Description,
			colCover:       book.Cover,
			colCoverName:   book.CoverName,
			colCoverMime:   book.CoverMime,
			colFile:        book.File,
			colFileName:    book.FileName,
			colAddedBy:     book.AddedBy,
		}).
		Returning(goqu.C(colID))

	sqlText, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return 0, errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	return cs.queryGeneratedID(ctx, operationAddBook, sqlText, args)
}

// GetBookByID loads one book with all of its columns, including the cover and
// file blobs.
func (cs CatalogStore) GetBookByID(ctx context.Context, bookID int64) (catalog.Book, error) {
	empty := catalog.Book{}
	dialect := goqu.Dialect(dialectPostgres)

	stmt := dialect.
		From(cs.booksTableName).
		Select(
			goqu.C(colID), goqu.C(colTitle), goqu.C(colAuthors),
			goqu.C(colISBN), goqu.C(colDescription),
			goqu.C(colCover), goqu.C(colCoverName), goqu.C(colCoverMime),
			goqu.C(colFile), goqu.C(colFileName), goqu.C(colAddedBy),
		).
		Where(goqu.C(colID).Eq(bookID))

	sqlText, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return empty, errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	ctx, span := cs.startTraceSpan(ctx, operationGetBookByID)
	start := time.Now()

	rows, err := cs.db.Query(ctx, sqlText, args...)
	if err != nil {
		wrapped := errors.Join(catalog.ErrQueryingBooksFailed, err)
		cs.observeStatementError(ctx, span, operationGetBookByID, wrapped)

		return empty, wrapped
	}
	defer cs.closeRows(ctx, rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			wrapped := errors.Join(catalog.ErrQueryingBooksFailed, rowsErr)
			cs.observeStatementError(ctx, span, operationGetBookByID, wrapped)

			return empty, wrapped
		}

		cs.observeStatementError(ctx, span, operationGetBookByID, catalog.ErrBookNotFound)

		return empty, catalog.ErrBookNotFound
	}

	var book catalog.Book
	var isbn, description, coverName, coverMime sql.NullString

	err = rows.Scan(
		&book.ID, &book.Title, &book.Authors,
		&isbn, &description,
		&book.Cover, &coverName, &coverMime,
		&book.File, &book.FileName, &book.AddedBy,
	)
	if err != nil {
		wrapped := errors.Join(catalog.ErrScanningDBRowFailed, err)
		cs.observeStatementError(ctx, span, operationGetBookByID, wrapped)

		return empty, wrapped
	}

	book.ISBN = isbn.String
	book.Description = description.String
	book.CoverName = coverName.String
	book.CoverMime = coverMime.String

	cs.observeStatementSuccess(ctx, span, operationGetBookByID, time.Since(start))

	return book, nil
}

// DeleteBook removes a book owned by the given user together with all
// reading-list entries that reference it. It reports ErrBookNotFound when the
// book does not exist or belongs to a different owner.
func (cs CatalogStore) DeleteBook(ctx context.Context, bookID int64, ownerID int64) error {
	dialect := goqu.Dialect(dialectPostgres)

	deleteEntriesStmt := dialect.
		Delete(cs.usersBooksTableName).
		Where(goqu.C(colBookID).Eq(bookID))

	deleteBookStmt := dialect.
		Delete(cs.booksTableName).
		Where(
			goqu.C(colID).Eq(bookID),
			goqu.C(colAddedBy).Eq(ownerID),
		)

	entriesSQL, entriesArgs, err := deleteEntriesStmt.Prepared(true).ToSQL()
	if err != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	bookSQL, bookArgs, err := deleteBookStmt.Prepared(true).ToSQL()
	if err != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	ctx, span := cs.startTraceSpan(ctx, operationDeleteBook)
	start := time.Now()

	tx, err := cs.db.BeginTx(ctx)
	if err != nil {
		wrapped := errors.Join(catalog.ErrOpeningTransactionFailed, err)
		cs.observeStatementError(ctx, span, operationDeleteBook, wrapped)

		return wrapped
	}

	if _, err = tx.Exec(ctx, entriesSQL, entriesArgs...); err != nil {
		wrapped := errors.Join(catalog.ErrExecutingStatementFailed, err)
		cs.rollback(ctx, tx)
		cs.observeStatementError(ctx, span, operationDeleteBook, wrapped)

		return wrapped
	}

	result, err := tx.Exec(ctx, bookSQL, bookArgs...)
	if err != nil {
		wrapped := errors.Join(catalog.ErrExecutingStatementFailed, err)
		cs.rollback(ctx, tx)
		cs.observeStatementError(ctx, span, operationDeleteBook, wrapped)

		return wrapped
	}

	affected, err := result.RowsAffected()
	if err != nil {
		wrapped := errors.Join(catalog.ErrGettingRowsAffectedFailed, err)
		cs.rollback(ctx, tx)
		cs.observeStatementError(ctx, span, operationDeleteBook, wrapped)

		return wrapped
	}

	if affected == 0 {
		cs.rollback(ctx, tx)
		cs.observeStatementError(ctx, span, operationDeleteBook, catalog.ErrBookNotFound)

		return catalog.ErrBookNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		wrapped := errors.Join(catalog.ErrCommittingTransactionFailed, err)
		cs.observeStatementError(ctx, span, operationDeleteBook, wrapped)

		return wrapped
	}

	cs.observeStatementSuccess(ctx, span, operationDeleteBook, time.Since(start))

	return nil
}

// AddUser stores a new user and returns its generated id. The email is stored
// lower-cased so lookups by email stay case-insensitive.
func (cs CatalogStore) AddUser(ctx context.Context, user catalog.User) (int64, error) {
	dialect := goqu.Dialect(dialectPostgres)

	stmt := dialect.
		Insert(cs.usersTableName).
		Rows(goqu.Record{
			colUserName: user.UserName,
			colEmail:    catalog.NormalizeEmail(user.Email),
			colPassword: user.PasswordHash,
			colSalt:     user.Salt,
		}).
		Returning(goqu.C(colID))

	sqlText, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return 0, errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	return cs.queryGeneratedID(ctx, operationAddUser, sqlText, args)
}

// GetUserIDByEmail resolves a user's id from their email, case-insensitively.
func (cs CatalogStore) GetUserIDByEmail(ctx context.Context, email string) (int64, error) {
	normalized := catalog.NormalizeEmail(email)
	if normalized == "" {
		return 0, catalog.ErrUserNotFound
	}

	dialect := goqu.Dialect(dialectPostgres)

	stmt := dialect.
		From(cs.usersTableName).
		Select(goqu.C(colID)).
		Where(goqu.C(colEmail).Eq(normalized))

	sqlText, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return 0, errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	return cs.querySingleID(ctx, operationGetUserID, cs.db.Query, sqlText, args, catalog.ErrUserNotFound)
}

// EnsureAnonymousUser returns the id of the anonymous fallback user, creating
// it first when it does not exist yet. Books of removed users are reassigned
// to this user.
func (cs CatalogStore) EnsureAnonymousUser(ctx context.Context) (int64, error) {
	dialect := goqu.Dialect(dialectPostgres)

	selectStmt := dialect.
		From(cs.usersTableName).
		Select(goqu.C(colID)).
		Where(goqu.C(colUserName).Eq(catalog.AnonymousUserName))

	selectSQL, selectArgs, err := selectStmt.Prepared(true).ToSQL()
	if err != nil {
		return 0, errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	id, err := cs.querySingleID(ctx, operationEnsureAnonymous, cs.db.QueryPrimary, selectSQL, selectArgs, catalog.ErrUserNotFound)
	if err == nil {
		return id, nil
	}

	if !errors.Is(err, catalog.ErrUserNotFound) {
		return 0, err
	}

	insertStmt := dialect.
		Insert(cs.usersTableName).
		Rows(goqu.Record{
			colUserName: catalog.AnonymousUserName,
			colEmail:    catalog.AnonymousUserName,
			colPassword: "",
			colSalt:     "",
		}).
		Returning(goqu.C(colID))

	insertSQL, insertArgs, err := insertStmt.Prepared(true).ToSQL()
	if err != nil {
		return 0, errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	return cs.queryGeneratedID(ctx, operationEnsureAnonymous, insertSQL, insertArgs)
}

// AddToReadingList puts a book on the user's reading list as unread. Adding a
// book that is already on the list is a no-op.
func (cs CatalogStore) AddToReadingList(ctx context.Context, email string, bookID int64) error {
	normalized := catalog.NormalizeEmail(email)
	dialect := goqu.Dialect(dialectPostgres)

	existsSubquery := dialect.
		From(goqu.T(cs.usersBooksTableName).As("x")).
		Select(goqu.L("1")).
		Where(
			goqu.T("x").Col(colUserID).Eq(goqu.T(aliasUsers).Col(colID)),
			goqu.T("x").Col(colBookID).Eq(bookID),
		)

	sourceStmt := dialect.
		From(goqu.T(cs.usersTableName).As(aliasUsers)).
		Select(goqu.V(false), goqu.T(aliasUsers).Col(colID), goqu.V(bookID)).
		Where(
			goqu.T(aliasUsers).Col(colEmail).Eq(normalized),
			goqu.L("NOT EXISTS ?", existsSubquery),
		)

	stmt := dialect.
		Insert(cs.usersBooksTableName).
		Cols(colIsRead, colUserID, colBookID).
		FromQuery(sourceStmt)

	sqlText, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	affected, err := cs.execStatement(ctx, operationAddToList, sqlText, args)
	if err != nil {
		return err
	}

	if affected == 0 {
		// Nothing inserted: either the entry already exists (fine) or the
		// user is unknown (an error).
		if _, lookupErr := cs.GetUserIDByEmail(ctx, normalized); lookupErr != nil {
			return lookupErr
		}
	}

	return nil
}

// RemoveFromReadingList takes a book off the user's reading list.
func (cs CatalogStore) RemoveFromReadingList(ctx context.Context, email string, bookID int64) error {
	dialect := goqu.Dialect(dialectPostgres)

	stmt := dialect.
		Delete(cs.usersBooksTableName).
		Where(
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colUserID).Eq(cs.userIDSubquery(email)),
		)

	sqlText, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	affected, err := cs.execStatement(ctx, operationRemoveFromList, sqlText, args)
	if err != nil {
		return err
	}

	if affected == 0 {
		return catalog.ErrReadingListEntryNotFound
	}

	return nil
}

// MarkRead flags a reading-list entry as read or unread.
func (cs CatalogStore) MarkRead(ctx context.Context, email string, bookID int64, isRead bool) error {
	dialect := goqu.Dialect(dialectPostgres)

	stmt := dialect.
		Update(cs.usersBooksTableName).
		Set(goqu.Record{colIsRead: isRead}).
		Where(
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colUserID).Eq(cs.userIDSubquery(email)),
		)

	sqlText, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	affected, err := cs.execStatement(ctx, operationMarkRead, sqlText, args)
	if err != nil {
		return err
	}

	if affected == 0 {
		return catalog.ErrReadingListEntryNotFound
	}

	return nil
}

// IsRead reports whether the user has marked the given book as read.
func (cs CatalogStore) IsRead(ctx context.Context, email string, bookID int64) (bool, error) {
	dialect := goqu.Dialect(dialectPostgres)

	stmt := dialect.
		From(cs.usersBooksTableName).
		Select(goqu.C(colIsRead)).
		Where(
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colUserID).Eq(cs.userIDSubquery(email)),
		)

	sqlText, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return false, errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	ctx, span := cs.startTraceSpan(ctx, operationIsRead)
	start := time.Now()

	rows, err := cs.db.Query(ctx, sqlText, args...)
	if err != nil {
		wrapped := errors.Join(catalog.ErrQueryingBooksFailed, err)
		cs.observeStatementError(ctx, span, operationIsRead, wrapped)

		return false, wrapped
	}
	defer cs.closeRows(ctx, rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			wrapped := errors.Join(catalog.ErrQueryingBooksFailed, rowsErr)
			cs.observeStatementError(ctx, span, operationIsRead, wrapped)

			return false, wrapped
		}

		cs.observeStatementError(ctx, span, operationIsRead, catalog.ErrReadingListEntryNotFound)

		return false, catalog.ErrReadingListEntryNotFound
	}

	var isRead bool

	if err = rows.Scan(&isRead); err != nil {
		wrapped := errors.Join(catalog.ErrScanningDBRowFailed, err)
		cs.observeStatementError(ctx, span, operationIsRead, wrapped)

		return false, wrapped
	}

	cs.observeStatementSuccess(ctx, span, operationIsRead, time.Since(start))

	return isRead, nil
}

// RemoveUser deletes a user in one transaction: the user's books are
// reassigned to the anonymous user, the user's reading-list entries are
// removed, then the user row itself is deleted.
func (cs CatalogStore) RemoveUser(ctx context.Context, email string) error {
	userID, err := cs.GetUserIDByEmail(ctx, email)
	if err != nil {
		return err
	}

	anonymousID, err := cs.EnsureAnonymousUser(ctx)
	if err != nil {
		return err
	}

	dialect := goqu.Dialect(dialectPostgres)

	reassignStmt := dialect.
		Update(cs.booksTableName).
		Set(goqu.Record{colAddedBy: anonymousID}).
		Where(goqu.C(colAddedBy).Eq(userID))

	deleteEntriesStmt := dialect.
		Delete(cs.usersBooksTableName).
		Where(goqu.C(colUserID).Eq(userID))

	deleteUserStmt := dialect.
		Delete(cs.usersTableName).
		Where(goqu.C(colID).Eq(userID))

	reassignSQL, reassignArgs, err := reassignStmt.Prepared(true).ToSQL()
	if err != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	entriesSQL, entriesArgs, err := deleteEntriesStmt.Prepared(true).ToSQL()
	if err != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	userSQL, userArgs, err := deleteUserStmt.Prepared(true).ToSQL()
	if err != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, err)
	}

	type statement struct {
		sqlText string
		args    []any
	}

	statements := []statement{
		{reassignSQL, reassignArgs},
		{entriesSQL, entriesArgs},
		{userSQL, userArgs},
	}

	ctx, span := cs.startTraceSpan(ctx, operationRemoveUser)
	start := time.Now()

	tx, err := cs.db.BeginTx(ctx)
	if err != nil {
		wrapped := errors.Join(catalog.ErrOpeningTransactionFailed, err)
		cs.observeStatementError(ctx, span, operationRemoveUser, wrapped)

		return wrapped
	}

	for _, statement := range statements {
		if _, err = tx.Exec(ctx, statement.sqlText, statement.args...); err != nil {
			wrapped := errors.Join(catalog.ErrExecutingStatementFailed, err)
			cs.rollback(ctx, tx)
			cs.observeStatementError(ctx, span, operationRemoveUser, wrapped)

			return wrapped
		}
	}

	if err = tx.Commit(ctx); err != nil {
		wrapped := errors.Join(catalog.ErrCommittingTransactionFailed, err)
		cs.observeStatementError(ctx, span, operationRemoveUser, wrapped)

		return wrapped
	}

	cs.observeStatementSuccess(ctx, span, operationRemoveUser, time.Since(start))

	return nil
}

// userIDSubquery builds the correlated lookup of a user's id by email, used
// by the reading-list statements so they stay single round trips.
func (cs CatalogStore) userIDSubquery(email string) *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(cs.usersTableName).
		Select(goqu.C(colID)).
		Where(goqu.C(colEmail).Eq(catalog.NormalizeEmail(email)))
}

// execStatement runs one write statement and returns its affected row count.
func (cs CatalogStore) execStatement(ctx context.Context, operation string, sqlText string, args []any) (int64, error) {
	ctx, span := cs.startTraceSpan(ctx, operation)
	start := time.Now()

	result, err := cs.db.Exec(ctx, sqlText, args...)
	if err != nil {
		wrapped := errors.Join(catalog.ErrExecutingStatementFailed, err)
		cs.observeStatementError(ctx, span, operation, wrapped)

		return 0, wrapped
	}

	affected, err := result.RowsAffected()
	if err != nil {
		wrapped := errors.Join(catalog.ErrGettingRowsAffectedFailed, err)
		cs.observeStatementError(ctx, span, operation, wrapped)

		return 0, wrapped
	}

	cs.observeStatementSuccess(ctx, span, operation, time.Since(start))

	return affected, nil
}

// queryGeneratedID runs an INSERT ... RETURNING id statement on the primary.
func (cs CatalogStore) queryGeneratedID(ctx context.Context, operation string, sqlText string, args []any) (int64, error) {
	return cs.querySingleID(ctx, operation, cs.db.QueryPrimary, sqlText, args, catalog.ErrExecutingStatementFailed)
}

// queryFunc is the signature shared by the adapter's read and primary query paths.
type queryFunc func(ctx context.Context, query string, args ...any) (adapters.DBRows, error)

// querySingleID runs a statement expected to yield one id row, returning
// notFoundErr when the result set is empty.
func (cs CatalogStore) querySingleID(ctx context.Context, operation string, query queryFunc, sqlText string, args []any, notFoundErr error) (int64, error) {
	ctx, span := cs.startTraceSpan(ctx, operation)
	start := time.Now()

	rows, err := query(ctx, sqlText, args...)
	if err != nil {
		wrapped := errors.Join(catalog.ErrQueryingBooksFailed, err)
		cs.observeStatementError(ctx, span, operation, wrapped)

		return 0, wrapped
	}
	defer cs.closeRows(ctx, rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			wrapped := errors.Join(catalog.ErrQueryingBooksFailed, rowsErr)
			cs.observeStatementError(ctx, span, operation, wrapped)

			return 0, wrapped
		}

		cs.observeStatementError(ctx, span, operation, notFoundErr)

		return 0, notFoundErr
	}

	var id int64

	if err = rows.Scan(&id); err != nil {
		wrapped := errors.Join(catalog.ErrScanningDBRowFailed, err)
		cs.observeStatementError(ctx, span, operation, wrapped)

		return 0, wrapped
	}

	cs.observeStatementSuccess(ctx, span, operation, time.Since(start))

	return id, nil
}

func (cs CatalogStore) rollback(ctx context.Context, tx interface {
	Rollback(ctx context.Context) error
}) {
	if err := tx.Rollback(ctx); err != nil {
		cs.logError(ctx, logMsgRollbackFailed, err)
	}
}
