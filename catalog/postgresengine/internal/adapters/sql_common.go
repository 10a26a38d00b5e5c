package adapters

import (
	"context"
	"database/sql"
	"errors"
)

var errNoMoreResultSets = errors.New("no more result sets in the batch")

// stdRows wraps standard library sql.Rows to implement the DBRows interface.
type stdRows struct {
	rows *sql.Rows
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

func (s *stdRows) Err() error {
	return s.rows.Err()
}

func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement the DBResult interface.
type stdResult struct {
	result sql.Result
}

func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

// stdBatchResults runs a batch queue sequentially on one pooled connection.
// The standard library has no pipelined batch protocol, so this is the
// closest equivalent: every statement still sees the same connection and
// the caller still reads result sets in queue order.
type stdBatchResults struct {
	ctx     context.Context
	conn    *sql.Conn
	queries []BatchQuery
	next    int
}

func newStdBatchResults(ctx context.Context, conn *sql.Conn, queries []BatchQuery) *stdBatchResults {
	return &stdBatchResults{ctx: ctx, conn: conn, queries: queries}
}

// Query executes the next queued statement and returns its result set.
func (s *stdBatchResults) Query() (DBRows, error) {
	if s.next >= len(s.queries) {
		return nil, errNoMoreResultSets
	}

	query := s.queries[s.next]
	s.next++

	rows, err := s.conn.QueryContext(s.ctx, query.SQL, query.Args...)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Close returns the connection to the pool.
func (s *stdBatchResults) Close() error {
	return s.conn.Close()
}

// stdTx wraps standard library sql.Tx to implement the DBTx interface.
type stdTx struct {
	tx *sql.Tx
}

func (s *stdTx) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	result, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

func (s *stdTx) Commit(_ context.Context) error {
	return s.tx.Commit()
}

func (s *stdTx) Rollback(_ context.Context) error {
	return s.tx.Rollback()
}
