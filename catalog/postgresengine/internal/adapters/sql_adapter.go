package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for sql.DB.
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new SQL adapter.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Query executes a query using the sql.DB and returns wrapped rows.
func (s *SQLAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// QueryPrimary is identical to Query; sql.DB has no replica split.
func (s *SQLAdapter) QueryPrimary(ctx context.Context, query string, args ...any) (DBRows, error) {
	return s.Query(ctx, query, args...)
}

// Exec executes a statement using the sql.DB and returns the wrapped result.
func (s *SQLAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// QueryBatch acquires one pooled connection and runs the queue on it sequentially.
func (s *SQLAdapter) QueryBatch(ctx context.Context, queries []BatchQuery) (DBBatchResults, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	return newStdBatchResults(ctx, conn, queries), nil
}

// BeginTx starts a transaction on the sql.DB.
func (s *SQLAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx}, nil
}
