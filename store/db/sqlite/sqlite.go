// Package sqlite implements store.Driver on top of SQLite via the
// pure-Go modernc.org/sqlite driver, for development and single-node
// deployments that don't want a PostgreSQL dependency.
package sqlite

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/internal/profile"
	"github.com/hrygo/chatrelay/store"
)

type DB struct {
	db *sql.DB
}

// NewDB opens profile.DSN as a SQLite file and ensures the schema exists.
func NewDB(ctx context.Context, p *profile.Profile) (store.Driver, error) {
	if p.DSN == "" {
		return nil, errors.New("dsn required")
	}

	sqlDB, err := sql.Open("sqlite", p.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", p.DSN)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return nil, errors.Wrapf(err, "failed to set pragma: %s", pragma)
		}
	}

	// A single connection keeps WAL-mode SQLite simple: no pooled-connection
	// contention, no "database is locked" retries to write around.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	d := &DB{db: sqlDB}
	if err := d.migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema")
	}

	return d, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, schemaSQL)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS core_ai (
	id text PRIMARY KEY,
	name text NOT NULL,
	api_endpoint text NOT NULL,
	auth_required integer NOT NULL DEFAULT 0,
	auth_token text NOT NULL DEFAULT '',
	timeout_seconds integer NOT NULL DEFAULT 30,
	is_active integer NOT NULL DEFAULT 1,
	metadata text NOT NULL DEFAULT '{}',
	created_ts integer NOT NULL,
	updated_ts integer NOT NULL
);

CREATE TABLE IF NOT EXISTS platform (
	id text PRIMARY KEY,
	name text NOT NULL,
	base_url text NOT NULL,
	rate_limit_per_minute integer NOT NULL DEFAULT 60,
	auth_required integer NOT NULL DEFAULT 0,
	auth_token text NOT NULL DEFAULT '',
	is_active integer NOT NULL DEFAULT 1,
	metadata text NOT NULL DEFAULT '{}',
	created_ts integer NOT NULL,
	updated_ts integer NOT NULL
);

CREATE TABLE IF NOT EXISTS platform_action (
	id text PRIMARY KEY,
	platform_id text NOT NULL REFERENCES platform(id),
	name text NOT NULL,
	method text NOT NULL,
	path text NOT NULL,
	is_active integer NOT NULL DEFAULT 1,
	created_ts integer NOT NULL,
	updated_ts integer NOT NULL
);

CREATE TABLE IF NOT EXISTS bot (
	id text PRIMARY KEY,
	name text NOT NULL,
	language text NOT NULL DEFAULT 'vi',
	is_active integer NOT NULL DEFAULT 1,
	core_ai_id text NOT NULL REFERENCES core_ai(id),
	platform_id text NOT NULL REFERENCES platform(id),
	created_ts integer NOT NULL,
	updated_ts integer NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation (
	id text PRIMARY KEY,
	conversation_id text NOT NULL UNIQUE,
	bot_id text NOT NULL REFERENCES bot(id),
	status text NOT NULL DEFAULT 'active',
	context text NOT NULL DEFAULT '{}',
	history text NOT NULL DEFAULT '',
	message_count integer NOT NULL DEFAULT 0,
	created_ts integer NOT NULL,
	updated_ts integer NOT NULL
);

CREATE TABLE IF NOT EXISTS message (
	id text PRIMARY KEY,
	conversation_id text NOT NULL REFERENCES conversation(id),
	role text NOT NULL,
	content text NOT NULL,
	content_type text NOT NULL DEFAULT 'text/plain',
	created_ts integer NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_message_conversation ON message(conversation_id, created_ts);
`
