package config

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPGXPoolConfig creates a pgxpool.Config for the test database.
func PostgresPGXPoolConfig() *pgxpool.Config {
	const defaultMaxConnections = int32(25)
	const defaultMinConnections = int32(2)
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5
	const defaultHealthCheckPeriod = time.Minute
	const defaultConnectTimeout = time.Second * 5

	dbConfig, err := pgxpool.ParseConfig(PostgresDSN())
	if err != nil {
		log.Fatal("Failed to create a config, error: ", err)
	}

	dbConfig.MaxConns = defaultMaxConnections
	dbConfig.MinConns = defaultMinConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return dbConfig
}

// PostgresPGXPool creates a connected pgxpool.Pool for the test database.
func PostgresPGXPool(ctx context.Context) *pgxpool.Pool {
	pool, err := pgxpool.NewWithConfig(ctx, PostgresPGXPoolConfig())
	if err != nil {
		log.Fatal("Failed to create a connection pool, error: ", err)
	}

	return pool
}
