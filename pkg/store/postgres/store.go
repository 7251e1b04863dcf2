// Package postgres backs the KV boundary with a single key-value table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_entries (
	k          TEXT PRIMARY KEY,
	v          BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// Store implements store.KV on top of a kv_entries table.
type Store struct {
	db *sql.DB
}

// Open connects, verifies the connection and ensures the table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure kv_entries: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, for tests.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT v FROM kv_entries WHERE k = $1`

	var v []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	const query = `INSERT INTO kv_entries (k, v, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_entries WHERE k = $1`

	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

func (s *Store) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	const query = `SELECT k, v FROM kv_entries WHERE k LIKE $1 || '%'`

	rows, err := s.db.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

var _ store.KV = (*Store)(nil)
