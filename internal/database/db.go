// Package database provides PostgreSQL persistence for scan records.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sightline/sightline/pkg/logger"
)

// DB wraps a pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// Connect opens a connection pool and verifies the database is reachable.
func Connect(ctx context.Context, url string) (*DB, error) {
	return ConnectWithLogger(ctx, url, logger.GetGlobalLogger())
}

// ConnectWithLogger opens a connection pool with a custom logger.
func ConnectWithLogger(ctx context.Context, url string, log logger.Logger) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Debug("Connected to database", "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database)
	return &DB{pool: pool, logger: log}, nil
}

// Pool returns the underlying connection pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close releases all pooled connections.
func (db *DB) Close() {
	db.pool.Close()
}
