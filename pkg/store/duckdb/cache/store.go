package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/store"
)

// Store keeps result cache rows in the cache_entries table.
type Store interface {
	Get(ctx context.Context, key string) (*store.CacheEntry, error)
	Upsert(ctx context.Context, entry store.CacheEntry) error
	DeleteByType(ctx context.Context, entryType string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type cacheStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &cacheStore{db: db}, nil
}

func (s *cacheStore) Get(ctx context.Context, key string) (*store.CacheEntry, error) {
	query := `
		SELECT key, type, payload, created_at, expires_at, filter_hash
		FROM cache_entries
		WHERE key = ?
	`
	var entry store.CacheEntry
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&entry.Key,
		&entry.Type,
		&entry.Payload,
		&entry.CreatedAt,
		&entry.ExpiresAt,
		&entry.FilterHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: %w", err)
	}
	return &entry, nil
}

func (s *cacheStore) Upsert(ctx context.Context, entry store.CacheEntry) error {
	query := `
		INSERT INTO cache_entries (key, type, payload, created_at, expires_at, filter_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			type = excluded.type,
			payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at,
			filter_hash = excluded.filter_hash
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.Key,
		entry.Type,
		entry.Payload,
		entry.CreatedAt.UTC(),
		entry.ExpiresAt.UTC(),
		entry.FilterHash,
	)
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (s *cacheStore) DeleteByType(ctx context.Context, entryType string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE type = ?`, entryType)
	if err != nil {
		return 0, fmt.Errorf("delete cache entries by type: %w", err)
	}
	return res.RowsAffected()
}

func (s *cacheStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired cache entries: %w", err)
	}
	return res.RowsAffected()
}
