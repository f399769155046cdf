package transfer

// postgres.go stores grids in a single jsonb table so several server
// instances behind a load balancer can share sessions.
//
// Expiry works like MemoryStore: rows older than the TTL are ignored by Get
// and deleted by Purge.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PostgresStore.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS grid_blobs (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS grid_blobs_updated_at_idx ON grid_blobs (updated_at);
`

// PostgresStore is a BlobStore backed by the grid_blobs table.
type PostgresStore struct {
	db  DBTX
	ttl time.Duration
	now func() time.Time
}

// NewPostgresStore creates a store on db. A ttl of zero or less disables
// expiry.
func NewPostgresStore(db DBTX, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl, now: time.Now}
}

// EnsureSchema creates the grid_blobs table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create grid_blobs: %w", err)
	}
	return nil
}

// cutoff returns the oldest updated_at still considered live.
func (p *PostgresStore) cutoff() time.Time {
	if p.ttl <= 0 {
		return time.Time{}
	}
	return p.now().Add(-p.ttl)
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(ctx,
		`SELECT value FROM grid_blobs WHERE key = $1 AND updated_at > $2`,
		key, p.cutoff(),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (p *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO grid_blobs (key, value, updated_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, string(value), p.now(),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM grid_blobs WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Purge(ctx context.Context) (int, error) {
	if p.ttl <= 0 {
		return 0, nil
	}
	tag, err := p.db.Exec(ctx, `DELETE FROM grid_blobs WHERE updated_at <= $1`, p.cutoff())
	if err != nil {
		return 0, fmt.Errorf("purge grid_blobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
