// Package postgresengine provides the PostgreSQL implementation of the shared
// library catalog query engine.
//
// This package turns normalized page requests into safe, efficient SQL against
// three views of the books table (administration, public search, personal
// reading list) plus a statistics aggregation, supporting multiple database
// adapters (pgx, sql.DB, sqlx).
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Item page and total count derived from one shared predicate and executed
//     as one batch (a single network round trip on pgx)
//   - Sort columns resolved through per-view whitelists; filter values always
//     bound as parameters
//   - Configurable table names and optional logging, metrics, and tracing
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewCatalogStoreFromPGXPool(db)
//
//	// With operational logging and metrics
//	store, _ := postgresengine.NewCatalogStoreFromPGXPool(
//		db,
//		postgresengine.WithLogger(logger),
//		postgresengine.WithMetrics(collector),
//	)
//
//	page, _ := store.SearchBooks(ctx, req)
//	stats, _ := store.Statistics(ctx, callerEmail)
package postgresengine
