// Package repository persists games and their action history in postgres.
// The action history is the source of truth for undo and replay, state is
// always recomputed from the setup and the stored actions.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gamepark/rules-server-go/internal/config"
)

// DB wraps the postgres connection pool.
type DB struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewDB connects to postgres with the configured pool bounds and verifies
// the connection.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{pool: pool, log: log}, nil
}

// Pool exposes the underlying pool.
func (db *DB) Pool() *pgxpool.Pool { return db.pool }

// Stats returns the connection pool statistics.
func (db *DB) Stats() *pgxpool.Stat { return db.pool.Stat() }

// Close closes the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	players    JSONB NOT NULL,
	setup      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS actions (
	position   BIGSERIAL PRIMARY KEY,
	id         UUID NOT NULL,
	game_id    UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	player     INT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (game_id, id)
);

CREATE INDEX IF NOT EXISTS actions_game_idx ON actions (game_id, position);
`

// EnsureSchema creates the tables when they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	db.log.Info("database schema ensured")
	return nil
}
