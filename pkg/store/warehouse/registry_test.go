package warehouse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	sqlstore "github.com/de-tools/report-atlas/pkg/store/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profiles = `
[analytics]
type = snowflake
account = acme-eu1
user = reporter
password = secret
database = TRAFFIC
schema = PUBLIC
warehouse = REPORTING
table = ISP_TRAFFIC

[lakehouse]
type = databricks
host = dbc-1234.cloud.databricks.com
token = dapi123
http_path = /sql/1.0/warehouses/abc
catalog = main
schema = reports

[local]
type = duckdb
path = :memory:

[broken]
type = oracle
host = db.local
`

func writeProfiles(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "warehouses.ini")
	require.NoError(t, os.WriteFile(path, []byte(profiles), 0o600))
	return path
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	registry, err := NewRegistry(writeProfiles(t))
	require.NoError(t, err)

	t.Run("lists profiles with keys", func(t *testing.T) {
		names, err := registry.GetProfiles(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"analytics", "lakehouse", "local", "broken"}, names)
	})

	t.Run("snowflake profile", func(t *testing.T) {
		p, err := registry.GetProfile(ctx, "analytics")
		require.NoError(t, err)
		assert.Equal(t, KindSnowflake, p.Kind)
		assert.Equal(t, "ISP_TRAFFIC", p.Table)

		dsn, err := SnowflakeDSN(p)
		require.NoError(t, err)
		assert.Contains(t, dsn, "reporter")
		assert.Contains(t, dsn, "acme-eu1")
		assert.Contains(t, dsn, "warehouse=REPORTING")
	})

	t.Run("databricks dsn", func(t *testing.T) {
		p, err := registry.GetProfile(ctx, "lakehouse")
		require.NoError(t, err)
		assert.Equal(t,
			"token:dapi123@dbc-1234.cloud.databricks.com/sql/1.0/warehouses/abc?catalog=main&schema=reports",
			DatabricksDSN(p))
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := registry.GetProfile(ctx, "broken")
		assert.ErrorContains(t, err, "unsupported warehouse type")
	})

	t.Run("missing profile", func(t *testing.T) {
		_, err := registry.GetProfile(ctx, "nope")
		assert.ErrorContains(t, err, "not found")
	})
}

func TestNewRegistry_MissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "absent.ini"))
	assert.Error(t, err)
}

func TestOpen_DuckDB(t *testing.T) {
	src, err := Open(&Profile{Name: "local", Kind: KindDuckDB, Path: ":memory:"})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, sqlstore.DuckDB, src.Dialect)
	assert.Equal(t, sqlstore.DefaultTable, src.Table)

	traffic, err := src.Traffic()
	require.NoError(t, err)
	entities, err := traffic.Entities(context.Background(), domain.ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, entities)
}
