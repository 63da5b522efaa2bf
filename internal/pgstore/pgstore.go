// Package pgstore reads and writes the registry's PostgreSQL tables through a
// pgx connection pool.
//
// It offers the same repository methods as the SQLite store so the batch
// driver can run against either.
package pgstore

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/config"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps pgxpool with the registry queries.
type DB struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// New creates a new database connection pool
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Debug("database connected",
		"host", poolConfig.ConnConfig.Host,
		"db", poolConfig.ConnConfig.Database,
	)

	return &DB{pool: pool, log: log}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

// Migrate creates the registry tables if they are missing.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
