package helper

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		"userName" TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		salt TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		authors TEXT NOT NULL,
		isbn TEXT,
		description TEXT,
		cover BYTEA,
		"coverName" TEXT,
		"coverMime" TEXT,
		file BYTEA NOT NULL,
		"fileName" TEXT NOT NULL,
		"addedBy" BIGINT NOT NULL REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS "usersBooks" (
		id BIGSERIAL PRIMARY KEY,
		"isRead" BOOLEAN NOT NULL DEFAULT FALSE,
		"userId" BIGINT NOT NULL REFERENCES users (id),
		"bookId" BIGINT NOT NULL REFERENCES books (id)
	)`,
}

// CreateCatalogSchema creates the catalog tables if they do not exist yet.
func CreateCatalogSchema(t testing.TB, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	for _, statement := range schemaStatements {
		_, err := pool.Exec(ctx, statement)
		require.NoError(t, err, "creating catalog schema")
	}
}

// CleanUpCatalogData truncates all catalog tables.
func CleanUpCatalogData(t testing.TB, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `TRUNCATE TABLE "usersBooks", books, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "cleaning up catalog data")
}
