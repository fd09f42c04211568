// Package database opens the Postgres and Redis connections used by the API.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/luckydraw/backend/internal/config"
)

// Schema creates the accounts table and its ticket reverse index.
//
// Account numbers are unique on their lowercase form, ticket values are
// unique across every account, and tickets go away with their account.
// seq orders accounts created within the same timestamp.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id             UUID PRIMARY KEY,
	seq            BIGSERIAL NOT NULL,
	account_number TEXT NOT NULL CHECK (account_number <> ''),
	name           TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

ALTER TABLE accounts ADD COLUMN IF NOT EXISTS seq BIGSERIAL NOT NULL;

CREATE UNIQUE INDEX IF NOT EXISTS accounts_account_number_lower_key
	ON accounts (LOWER(account_number));

CREATE INDEX IF NOT EXISTS accounts_created_at_idx
	ON accounts (created_at DESC, seq DESC);

CREATE TABLE IF NOT EXISTS tickets (
	position      BIGSERIAL PRIMARY KEY,
	ticket_number TEXT NOT NULL CHECK (ticket_number <> ''),
	account_id    UUID NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT tickets_ticket_number_key UNIQUE (ticket_number)
);

CREATE INDEX IF NOT EXISTS tickets_account_id_idx
	ON tickets (account_id, position);
`

// DB wraps the database connection pool
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Connect opens the pool, checks connectivity and applies the schema
func Connect(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
	)

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	wrapped := &DB{DB: db, logger: logger}
	if err := wrapped.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database connection established",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
		"conn_max_lifetime", cfg.ConnMaxLifetime,
	)

	return wrapped, nil
}

// NewDB wraps an already opened pool, e.g. one backed by sqlmock
func NewDB(db *sql.DB, logger *slog.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// Migrate applies Schema. Every statement is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("error applying schema: %w", err)
	}
	return nil
}

// Close closes the database connection and logs the closure
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}
