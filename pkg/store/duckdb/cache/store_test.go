package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: s}
}

func entry(key, typ string, expiresAt time.Time) store.CacheEntry {
	return store.CacheEntry{
		Key:        key,
		Type:       typ,
		Payload:    []byte(`{"v":1}`),
		CreatedAt:  expiresAt.Add(-time.Hour),
		ExpiresAt:  expiresAt,
		FilterHash: "abc",
	}
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(nil)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestStore_GetUpsert(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	expires := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("missing row", func(t *testing.T) {
		got, err := f.store.Get(ctx, "entities:none")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("insert then update in place", func(t *testing.T) {
		require.NoError(t, f.store.Upsert(ctx, entry("entities:abc", "entities", expires)))

		updated := entry("entities:abc", "entities", expires.Add(time.Hour))
		updated.Payload = []byte(`{"v":2}`)
		require.NoError(t, f.store.Upsert(ctx, updated))

		got, err := f.store.Get(ctx, "entities:abc")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []byte(`{"v":2}`), got.Payload)
		assert.Equal(t, "entities", got.Type)
		assert.Equal(t, "abc", got.FilterHash)
		assert.True(t, expires.Add(time.Hour).Equal(got.ExpiresAt))

		var count int
		require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM cache_entries").Scan(&count))
		assert.Equal(t, 1, count)
	})
}

func TestStore_Delete(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, f.store.Upsert(ctx, entry("entities:a", "entities", now.Add(-time.Minute))))
	require.NoError(t, f.store.Upsert(ctx, entry("entities:b", "entities", now)))
	require.NoError(t, f.store.Upsert(ctx, entry("totals:a", "totals", now.Add(time.Minute))))
	require.NoError(t, f.store.Upsert(ctx, entry("totals:b", "totals", now.Add(time.Hour))))

	n, err := f.store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := f.store.Get(ctx, "totals:a")
	require.NoError(t, err)
	assert.NotNil(t, got)

	n, err = f.store.DeleteByType(ctx, "totals")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStore_ReadFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT key, type, payload").
		WithArgs("entities:abc").
		WillReturnError(sql.ErrConnDone)

	s, err := NewStore(db)
	require.NoError(t, err)

	got, err := s.Get(context.Background(), "entities:abc")
	assert.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
