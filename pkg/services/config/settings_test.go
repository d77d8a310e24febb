package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFs_Defaults(t *testing.T) {
	s, err := LoadFs(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", s.Server.Addr)
	assert.True(t, s.Cache.Enabled)
	assert.Equal(t, 30*time.Minute, s.Cache.DefaultTTL)
	assert.Equal(t, 24*time.Hour, s.Cache.ExtendedTTL)
	assert.Equal(t, 24*time.Hour, s.Documents.MaxAge)
	assert.Equal(t, 30, s.Documents.DailyWindow)
	assert.False(t, s.UsesS3())

	cc := s.CacheConfig()
	assert.Equal(t, s.Cache.DefaultTTL, cc.DefaultTTL)
	assert.Equal(t, time.Hour, s.SweeperConfig().Interval)
	assert.Equal(t, "report-atlas.db", s.DuckDB().DbPath)
}

func TestLoadFs_ConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/report-atlas.yaml", []byte(`
server:
  addr: "127.0.0.1:9000"
cache:
  default_ttl: 5m
documents:
  bucket: reports
  aws_region: eu-west-1
warehouse:
  profile: analytics
`), 0o644))

	s, err := LoadFs(fs, "/etc/report-atlas.yaml")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", s.Server.Addr)
	assert.Equal(t, 5*time.Minute, s.Cache.DefaultTTL)
	assert.Equal(t, 24*time.Hour, s.Cache.ExtendedTTL)
	assert.True(t, s.UsesS3())
	assert.Equal(t, "reports", s.S3().Bucket)
	assert.Equal(t, "eu-west-1", s.S3().Region)
	assert.Equal(t, "report-atlas/", s.S3().Prefix)
	assert.Equal(t, "analytics", s.Warehouse.Profile)
}

func TestLoadFs_EnvOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte("cache:\n  enabled: true\n"), 0o644))
	t.Setenv("REPORT_CACHE_ENABLED", "false")
	t.Setenv("REPORT_DOCUMENTS_MAX_AGE", "2h")
	t.Setenv("REPORT_DOCUMENTS_BRAND", "ACME")

	s, err := LoadFs(fs, "/cfg.yaml")
	require.NoError(t, err)

	assert.False(t, s.CacheConfig().Enabled)
	dc := s.DocumentConfig()
	assert.Equal(t, 2*time.Hour, dc.MaxAge)
	assert.Equal(t, "ACME", dc.Brand)
}

func TestLoadFs_Errors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		_, err := LoadFs(afero.NewMemMapFs(), "/nope.yaml")
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("REPORT_CACHE_DEFAULT_TTL", "0s")
		t.Setenv("REPORT_DOCUMENTS_DAILY_WINDOW", "-1")

		_, err := LoadFs(afero.NewMemMapFs(), "")
		require.Error(t, err)
		assert.ErrorContains(t, err, "cache ttls must be positive")
		assert.ErrorContains(t, err, "documents.daily_window must be positive")
	})

	t.Run("bucket without prefix", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte("documents:\n  bucket: reports\n  prefix: \"/\"\n"), 0o644))

		_, err := LoadFs(fs, "/cfg.yaml")
		assert.ErrorContains(t, err, "documents.prefix is required with documents.bucket")
	})
}
