package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db *sqlx.DB
}

// NewSQLXAdapter creates a new SQLX adapter.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// Query executes a query using the sqlx.DB and returns wrapped rows.
func (s *SQLXAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// QueryPrimary is identical to Query; sqlx.DB has no replica split.
func (s *SQLXAdapter) QueryPrimary(ctx context.Context, query string, args ...any) (DBRows, error) {
	return s.Query(ctx, query, args...)
}

// Exec executes a statement using the sqlx.DB and returns the wrapped result.
func (s *SQLXAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// QueryBatch acquires one pooled connection and runs the queue on it sequentially.
func (s *SQLXAdapter) QueryBatch(ctx context.Context, queries []BatchQuery) (DBBatchResults, error) {
	conn, err := s.db.DB.Conn(ctx)
	if err != nil {
		return nil, err
	}

	return newStdBatchResults(ctx, conn, queries), nil
}

// BeginTx starts a transaction on the sqlx.DB.
func (s *SQLXAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx}, nil
}
