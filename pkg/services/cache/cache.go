// Package cache memoizes aggregation query results in a persistent, TTL bounded store.
//
// The cache is a pure optimization: reads that fail are misses, writes that fail are dropped.
// Neither is ever surfaced to the caller.
package cache

import (
	"context"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

// Store persists cache rows.
type Store interface {
	// Get returns (nil, nil) when no row matches.
	Get(ctx context.Context, key string) (*store.CacheEntry, error)
	Upsert(ctx context.Context, entry store.CacheEntry) error
	DeleteByType(ctx context.Context, entryType string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Config struct {
	Enabled bool
	// DefaultTTL applies to Set.
	DefaultTTL time.Duration
	// ExtendedTTL is meant for slow changing results such as entity lists.
	ExtendedTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		DefaultTTL:  30 * time.Minute,
		ExtendedTTL: 24 * time.Hour,
	}
}

type Cache struct {
	store  Store
	config Config
	now    func() time.Time
}

type Option func(*Cache)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(s Store, config Config, opts ...Option) *Cache {
	c := &Cache{
		store:  s,
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the zero Config for a nil cache, which disables caching.
func (c *Cache) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.config
}

func (c *Cache) enabled() bool {
	return c != nil && c.config.Enabled && c.store != nil
}

func (c *Cache) get(ctx context.Context, key Key) ([]byte, bool) {
	if !c.enabled() {
		return nil, false
	}
	logger := zerolog.Ctx(ctx)

	entry, err := c.store.Get(ctx, key.String())
	if err != nil {
		logger.Warn().
			Err(&domain.CacheIOError{Op: "get", Key: key.String(), Err: err}).
			Msg("result cache read failed, treating as miss")
		return nil, false
	}
	if entry == nil {
		return nil, false
	}
	if !entry.ExpiresAt.After(c.now()) {
		return nil, false
	}
	return entry.Payload, true
}

func (c *Cache) set(ctx context.Context, key Key, payload []byte, ttl time.Duration) {
	if !c.enabled() {
		return
	}
	logger := zerolog.Ctx(ctx)

	if err := key.Validate(); err != nil {
		logger.Warn().Err(err).Msg("refusing to cache result under invalid key")
		return
	}
	if ttl < 0 {
		ttl = 0
	}

	now := c.now()
	entry := store.CacheEntry{
		Key:        key.String(),
		Type:       key.Type,
		Payload:    payload,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		FilterHash: key.Hash,
	}
	if err := c.store.Upsert(ctx, entry); err != nil {
		logger.Warn().
			Err(&domain.CacheIOError{Op: "set", Key: entry.Key, Err: err}).
			Msg("result cache write failed")
	}
}

// RemoveByType deletes every row tagged with the logical query name.
func (c *Cache) RemoveByType(ctx context.Context, entryType string) (int64, error) {
	if c == nil || c.store == nil {
		return 0, nil
	}
	n, err := c.store.DeleteByType(ctx, entryType)
	if err != nil {
		return 0, &domain.CacheIOError{Op: "remove by type", Key: entryType, Err: err}
	}
	zerolog.Ctx(ctx).Info().Str("type", entryType).Int64("deleted", n).Msg("removed cached results")
	return n, nil
}

// ClearExpired deletes every row with expiresAt <= now.
func (c *Cache) ClearExpired(ctx context.Context) (int64, error) {
	if c == nil || c.store == nil {
		return 0, nil
	}
	n, err := c.store.DeleteExpired(ctx, c.now())
	if err != nil {
		return 0, &domain.CacheIOError{Op: "clear expired", Err: err}
	}
	zerolog.Ctx(ctx).Debug().Int64("deleted", n).Msg("cleared expired cached results")
	return n, nil
}
