// Package adapters provides database adapter implementations for the PostgreSQL catalog store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database
// libraries: pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality
// through a common DBAdapter interface, allowing the catalog store to work seamlessly with
// any supported database connection type.
//
// Beyond single statements, the interface supports ordered multi-statement batches (the
// paged views and the statistics aggregation read several result sets per call) and store
// transactions (user removal mutates several tables atomically). The pgx adapter realizes
// a batch as one pipelined network round trip via pgx.Batch; the sql and sqlx adapters run
// the queue sequentially on a single pooled connection, which is the closest the standard
// library offers.
package adapters
