// Package postgres implements the store contract on top of a PostgreSQL
// table. The insert-uniqueness guarantee comes from the table's primary key:
// INSERT ... ON CONFLICT DO NOTHING either creates the record or reports that
// it already existed, in a single atomic statement.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the table used when no override is configured.
const DefaultTable = "storelock_records"

// Schema is the DDL for the default lock table. Deployments with their own
// migration tooling can inline it; acquired_at is assigned by the database
// server so callers never compare timestamps across skewed client clocks.
const Schema = `
CREATE TABLE IF NOT EXISTS storelock_records (
	key TEXT PRIMARY KEY,
	acquired_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Option configures a Store during construction.
type Option func(*Store)

// WithTable overrides the lock table name. The table must have the same shape
// as Schema.
func WithTable(table string) Option {
	return func(s *Store) {
		if table != "" {
			s.table = table
		}
	}
}

// Store is a PostgreSQL-backed atomic key store.
type Store struct {
	pool  *pgxpool.Pool
	table string

	insertSQL string
	getSQL    string
	deleteSQL string
}

// New returns a Store using the given connection pool. The pool remains owned
// by the caller.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:  pool,
		table: DefaultTable,
	}
	for _, opt := range opts {
		opt(s)
	}

	tbl := pgx.Identifier{s.table}.Sanitize()
	s.insertSQL = fmt.Sprintf(
		"INSERT INTO %s (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", tbl)
	s.getSQL = fmt.Sprintf(
		"SELECT acquired_at FROM %s WHERE key = $1", tbl)
	s.deleteSQL = fmt.Sprintf(
		"DELETE FROM %s WHERE key = $1", tbl)

	return s
}

// InsertIfAbsent implements store.Store. The row's acquired_at defaults to
// the database server's now().
func (s *Store) InsertIfAbsent(ctx context.Context, key string) (bool, error) {
	tag, err := s.pool.Exec(ctx, s.insertSQL, key)
	if err != nil {
		return false, fmt.Errorf("postgres insert %q: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, key string) (time.Time, bool, error) {
	var acquiredAt time.Time
	err := s.pool.QueryRow(ctx, s.getSQL, key).Scan(&acquiredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("postgres get %q: %w", key, err)
	}
	return acquiredAt, true, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, s.deleteSQL, key); err != nil {
		return fmt.Errorf("postgres delete %q: %w", key, err)
	}
	return nil
}
