package adapters

import "context"

// BatchQuery is one statement of an ordered multi-statement batch,
// carrying its SQL text and its own bound parameters.
type BatchQuery struct {
	SQL  string
	Args []any
}

// DBAdapter defines the interface for database operations needed by the catalog store.
// Query may be served by a read replica; QueryPrimary always runs against the
// primary and exists for writes that return rows (INSERT ... RETURNING).
type DBAdapter interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	QueryPrimary(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
	QueryBatch(ctx context.Context, queries []BatchQuery) (DBBatchResults, error)
	BeginTx(ctx context.Context) (DBTx, error)
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}

// DBBatchResults yields the result sets of a batch in queue order.
// Each call to Query returns the next result set; the previous result set
// must be fully read and closed first. Close releases the batch's connection.
type DBBatchResults interface {
	Query() (DBRows, error)
	Close() error
}

// DBTx defines the interface for a store transaction.
type DBTx interface {
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
