package catalog

import (
	"errors"
)

var (
	// ErrNilDatabaseConnection is returned when a store is constructed from a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableNameSupplied is returned when a table name option receives an empty string.
	ErrEmptyTableNameSupplied = errors.New("empty table name supplied")

	// ErrMissingFilterKey is returned when a view-specific filter key is absent
	// from the page request's filter map. It is raised before any query runs.
	ErrMissingFilterKey = errors.New("required filter key is missing from the page request")

	// ErrMissingCallerEmail is returned when a view that scopes by caller identity
	// receives a page request without a caller email.
	ErrMissingCallerEmail = errors.New("caller email is required for this view")

	// ErrBuildingQueryFailed is returned when SQL construction fails.
	ErrBuildingQueryFailed = errors.New("building the query failed")

	// ErrQueryingBooksFailed is returned when a read statement fails at the store.
	ErrQueryingBooksFailed = errors.New("querying books failed")

	// ErrScanningDBRowFailed is returned when a result row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning db row failed")

	// ErrExecutingStatementFailed is returned when a write statement fails at the store.
	ErrExecutingStatementFailed = errors.New("executing the statement failed")

	// ErrGettingRowsAffectedFailed is returned when the affected row count cannot be read.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")

	// ErrOpeningTransactionFailed is returned when a store transaction cannot be started.
	ErrOpeningTransactionFailed = errors.New("opening the transaction failed")

	// ErrCommittingTransactionFailed is returned when a store transaction cannot be committed.
	ErrCommittingTransactionFailed = errors.New("committing the transaction failed")

	// ErrBookNotFound is returned when a single-book lookup matches no row.
	// An empty page of a paged view is a normal result, not this error.
	ErrBookNotFound = errors.New("book not found")

	// ErrUserNotFound is returned when an identity lookup matches no row.
	ErrUserNotFound = errors.New("user not found")

	// ErrReadingListEntryNotFound is returned when a read-state operation targets
	// a (user, book) pair without a reading-list entry.
	ErrReadingListEntryNotFound = errors.New("reading list entry not found")
)
