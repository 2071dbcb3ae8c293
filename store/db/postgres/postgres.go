// Package postgres implements store.Driver on top of PostgreSQL via lib/pq,
// using hand-written parameterized SQL in the same idiom throughout.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/internal/profile"
	"github.com/hrygo/chatrelay/store"
)

type DB struct {
	db *sql.DB
}

// NewDB opens a connection pool against profile.DSN and ensures the schema exists.
func NewDB(ctx context.Context, p *profile.Profile) (store.Driver, error) {
	if p.DSN == "" {
		return nil, errors.New("dsn required")
	}

	sqlDB, err := sql.Open("postgres", p.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", p.DSN)
	}

	sqlDB.SetMaxOpenConns(p.DBPoolSize + p.DBMaxOverflow)
	sqlDB.SetMaxIdleConns(p.DBPoolSize)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

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

// placeholder returns the n-th ($n) Postgres bind parameter.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns a comma-joined "$1, $2, ..." list for n args.
func placeholders(n int) string {
	s := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			s += ", "
		}
		s += placeholder(i)
	}
	return s
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS core_ai (
	id varchar(36) PRIMARY KEY,
	name text NOT NULL,
	api_endpoint text NOT NULL,
	auth_required boolean NOT NULL DEFAULT false,
	auth_token text NOT NULL DEFAULT '',
	timeout_seconds integer NOT NULL DEFAULT 30,
	is_active boolean NOT NULL DEFAULT true,
	metadata jsonb NOT NULL DEFAULT '{}',
	created_ts bigint NOT NULL,
	updated_ts bigint NOT NULL
);

CREATE TABLE IF NOT EXISTS platform (
	id varchar(36) PRIMARY KEY,
	name text NOT NULL,
	base_url text NOT NULL,
	rate_limit_per_minute integer NOT NULL DEFAULT 60,
	auth_required boolean NOT NULL DEFAULT false,
	auth_token text NOT NULL DEFAULT '',
	is_active boolean NOT NULL DEFAULT true,
	metadata jsonb NOT NULL DEFAULT '{}',
	created_ts bigint NOT NULL,
	updated_ts bigint NOT NULL
);

CREATE TABLE IF NOT EXISTS platform_action (
	id varchar(36) PRIMARY KEY,
	platform_id varchar(36) NOT NULL REFERENCES platform(id),
	name text NOT NULL,
	method varchar(8) NOT NULL,
	path text NOT NULL,
	is_active boolean NOT NULL DEFAULT true,
	created_ts bigint NOT NULL,
	updated_ts bigint NOT NULL
);

CREATE TABLE IF NOT EXISTS bot (
	id varchar(36) PRIMARY KEY,
	name text NOT NULL,
	language varchar(8) NOT NULL DEFAULT 'vi',
	is_active boolean NOT NULL DEFAULT true,
	core_ai_id varchar(36) NOT NULL REFERENCES core_ai(id),
	platform_id varchar(36) NOT NULL REFERENCES platform(id),
	created_ts bigint NOT NULL,
	updated_ts bigint NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation (
	id varchar(36) PRIMARY KEY,
	conversation_id text NOT NULL UNIQUE,
	bot_id varchar(36) NOT NULL REFERENCES bot(id),
	status varchar(16) NOT NULL DEFAULT 'active',
	context jsonb NOT NULL DEFAULT '{}',
	history text NOT NULL DEFAULT '',
	message_count integer NOT NULL DEFAULT 0,
	created_ts bigint NOT NULL,
	updated_ts bigint NOT NULL
);

CREATE TABLE IF NOT EXISTS message (
	id varchar(36) PRIMARY KEY,
	conversation_id varchar(36) NOT NULL REFERENCES conversation(id),
	role varchar(8) NOT NULL,
	content text NOT NULL,
	content_type varchar(32) NOT NULL DEFAULT 'text/plain',
	created_ts bigint NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_message_conversation ON message(conversation_id, created_ts);
`
