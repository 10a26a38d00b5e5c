// Package config provides PostgreSQL database configuration for catalog
// store testing.
//
// This package contains factory functions for creating database connections
// using the catalog store's supported PostgreSQL adapters (pgx.Pool, sql.DB,
// sqlx.DB) with a pre-configured test database DSN. The DSN can be overridden
// through the CATALOG_POSTGRES_DSN environment variable.
package config
