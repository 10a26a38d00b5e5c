package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXAdapter implements DBAdapter for pgxpool.Pool.
type PGXAdapter struct {
	pool        *pgxpool.Pool
	replicaPool *pgxpool.Pool // optional replica for read operations
}

// NewPGXAdapter creates a new PGX adapter with a primary pool.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// NewPGXAdapterWithReplica creates a new PGX adapter with a primary pool and a replica pool.
func NewPGXAdapterWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool, replicaPool: replica}
}

// readPool returns the replica pool for read operations if one is configured.
func (p *PGXAdapter) readPool() *pgxpool.Pool {
	if p.replicaPool != nil {
		return p.replicaPool
	}

	return p.pool
}

// Query executes a query using the replica pool if available, otherwise the primary pool.
func (p *PGXAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := p.readPool().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

// QueryPrimary executes a query on the primary pool, for statements that
// write and return rows.
func (p *PGXAdapter) QueryPrimary(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

// Exec executes a statement using the pgx pool and returns the wrapped result.
func (p *PGXAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// QueryBatch sends all queued statements in a single network round trip
// using the pgx batch protocol. Result sets come back in queue order.
func (p *PGXAdapter) QueryBatch(ctx context.Context, queries []BatchQuery) (DBBatchResults, error) {
	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	return &pgxBatchResults{results: p.readPool().SendBatch(ctx, batch)}, nil
}

// BeginTx starts a transaction on the primary pool.
func (p *PGXAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &pgxTx{tx: tx}, nil
}

// pgxRows wraps pgx.Rows to implement the DBRows interface.
type pgxRows struct {
	rows pgx.Rows
}

// Next advances to the next row.
func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

// Scan copies row values into provided destinations.
func (p *pgxRows) Scan(dest ...any) error {
	return p.rows.Scan(dest...)
}

// Err returns any error that occurred while iterating.
func (p *pgxRows) Err() error {
	return p.rows.Err()
}

// Close closes the rows iterator.
func (p *pgxRows) Close() error {
	p.rows.Close()
	return nil
}

// pgxResult wraps pgconn.CommandTag to implement the DBResult interface.
type pgxResult struct {
	tag pgconn.CommandTag
}

// RowsAffected returns the number of rows affected by the command.
func (p *pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}

// pgxBatchResults wraps pgx.BatchResults to implement the DBBatchResults interface.
type pgxBatchResults struct {
	results pgx.BatchResults
}

// Query returns the next result set of the batch.
func (p *pgxBatchResults) Query() (DBRows, error) {
	rows, err := p.results.Query()
	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

// Close closes the batch, releasing its connection.
func (p *pgxBatchResults) Close() error {
	return p.results.Close()
}

// pgxTx wraps pgx.Tx to implement the DBTx interface.
type pgxTx struct {
	tx pgx.Tx
}

// Exec executes a statement within the transaction.
func (p *pgxTx) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	tag, err := p.tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// Commit commits the transaction.
func (p *pgxTx) Commit(ctx context.Context) error {
	return p.tx.Commit(ctx)
}

// Rollback rolls the transaction back.
func (p *pgxTx) Rollback(ctx context.Context) error {
	return p.tx.Rollback(ctx)
}
