// Package postgres opens the shared database handle and ensures the schema
// the stores depend on.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Schema is the DDL for the core tables. Kept here so integration tests and
// fresh deployments share one definition.
const Schema = `
CREATE TABLE IF NOT EXISTS members (
	id         UUID PRIMARY KEY,
	full_name  TEXT NOT NULL,
	email      TEXT NOT NULL,
	role       TEXT NOT NULL DEFAULT 'member',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id              UUID PRIMARY KEY,
	name            TEXT NOT NULL,
	starts_at       TIMESTAMPTZ,
	max_capacity    INTEGER,
	confirmed_count INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL DEFAULT 'OPEN',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL,
	CONSTRAINT events_confirmed_within_capacity
		CHECK (max_capacity IS NULL OR confirmed_count <= max_capacity)
);

CREATE TABLE IF NOT EXISTS registrations (
	id                UUID PRIMARY KEY,
	member_id         UUID NOT NULL REFERENCES members (id),
	event_id          UUID NOT NULL REFERENCES events (id),
	status            TEXT NOT NULL,
	waitlist_position INTEGER,
	requested_at      TIMESTAMPTZ NOT NULL,
	confirmed_at      TIMESTAMPTZ,
	cancelled_at      TIMESTAMPTZ,
	checked_in_at     TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS registrations_one_active_per_member_event
	ON registrations (member_id, event_id)
	WHERE status <> 'CANCELLED';

CREATE INDEX IF NOT EXISTS registrations_by_event
	ON registrations (event_id, status);
`

// EnsureSchema applies the schema. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
