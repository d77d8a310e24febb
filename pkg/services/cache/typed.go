package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Typed is a view of the cache for one payload type.
type Typed[T any] struct {
	cache *Cache
	codec Codec[T]
}

func For[T any](c *Cache, codec Codec[T]) Typed[T] {
	return Typed[T]{cache: c, codec: codec}
}

// JSON is For with the JSON codec.
func JSON[T any](c *Cache) Typed[T] {
	return For[T](c, JSONCodec[T]{})
}

func (t Typed[T]) Get(ctx context.Context, key Key) (T, bool) {
	var zero T
	payload, ok := t.cache.get(ctx, key)
	if !ok {
		return zero, false
	}
	v, err := t.codec.Decode(payload)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key.String()).Msg("cached payload unreadable, treating as miss")
		return zero, false
	}
	return v, true
}

// Set stores v under key with the default TTL.
func (t Typed[T]) Set(ctx context.Context, key Key, v T) {
	t.SetTTL(ctx, key, v, t.cache.Config().DefaultTTL)
}

// SetTTL stores v under key. A ttl <= 0 stores an already expired row.
func (t Typed[T]) SetTTL(ctx context.Context, key Key, v T, ttl time.Duration) {
	if !t.cache.enabled() {
		return
	}
	payload, err := t.codec.Encode(v)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key.String()).Msg("result not cacheable")
		return
	}
	t.cache.set(ctx, key, payload, ttl)
}

// Fetch returns the cached value or loads it from the authoritative source and caches it.
// Only load errors are returned.
func (t Typed[T]) Fetch(ctx context.Context, key Key, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if v, ok := t.Get(ctx, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	t.SetTTL(ctx, key, v, ttl)
	return v, nil
}
