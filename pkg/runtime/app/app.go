// Package app wires settings into the services shared by the web server and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/report-atlas/pkg/render/assets"
	"github.com/de-tools/report-atlas/pkg/services/cache"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/services/document"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	duckdbcache "github.com/de-tools/report-atlas/pkg/store/duckdb/cache"
	duckdbusage "github.com/de-tools/report-atlas/pkg/store/duckdb/usage"
	"github.com/de-tools/report-atlas/pkg/store/filecache"
	"github.com/de-tools/report-atlas/pkg/store/s3cache"
	"github.com/de-tools/report-atlas/pkg/store/warehouse"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

type App struct {
	Settings  *config.Settings
	DB        *sql.DB
	Cache     *cache.Cache
	Usage     *duckdbusage.Store
	Reports   *report.Service
	Documents *document.Assembler
	Logo      *assets.Logo

	closers []func() error
}

func New(ctx context.Context, s *config.Settings) (*App, error) {
	logger := zerolog.Ctx(ctx)

	db, err := duckdb.NewDB(s.DuckDB())
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	a := &App{Settings: s, DB: db, closers: []func() error{db.Close}}

	if err := a.init(ctx); err != nil {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("failed to release resources")
		}
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	s := a.Settings

	cacheStore, err := duckdbcache.NewStore(a.DB)
	if err != nil {
		return fmt.Errorf("failed to create cache store: %w", err)
	}
	a.Cache = cache.New(cacheStore, s.CacheConfig())

	a.Usage, err = duckdbusage.NewStore(a.DB)
	if err != nil {
		return fmt.Errorf("failed to create usage store: %w", err)
	}

	source, err := a.dataSource(ctx)
	if err != nil {
		return err
	}
	a.Reports = report.NewService(source, a.Cache)

	blobs, err := a.blobStore(ctx)
	if err != nil {
		return err
	}
	a.Logo = assets.NewLogo(afero.NewOsFs(), s.Documents.Logo)
	a.Documents = document.NewAssembler(a.Reports, blobs, a.Logo, s.DocumentConfig())
	return nil
}

// dataSource returns the configured warehouse, or the embedded database when no profile is set.
func (a *App) dataSource(ctx context.Context) (report.DataSource, error) {
	logger := zerolog.Ctx(ctx)
	name := a.Settings.Warehouse.Profile
	if name == "" {
		logger.Info().Str("path", a.Settings.DB.Path).Msg("reading traffic from the embedded database")
		return a.Usage, nil
	}

	registry, err := warehouse.NewRegistry(a.Settings.Warehouse.Profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse registry: %w", err)
	}
	profile, err := registry.GetProfile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve warehouse profile: %w", err)
	}
	src, err := warehouse.Open(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse %s: %w", name, err)
	}
	a.closers = append(a.closers, src.Close)

	logger.Info().
		Str("profile", profile.Name).
		Str("kind", profile.Kind).
		Str("table", src.Table).
		Msg("reading traffic from warehouse")
	return src.Traffic()
}

func (a *App) blobStore(ctx context.Context) (document.BlobStore, error) {
	s := a.Settings
	if s.UsesS3() {
		blobs, err := s3cache.NewFromSettings(ctx, s.S3())
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 document cache: %w", err)
		}
		return blobs, nil
	}

	blobs, err := filecache.NewOsStore(s.Documents.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create document cache: %w", err)
	}
	return blobs, nil
}

// Sweeper returns a sweeper over the result cache configured from settings.
func (a *App) Sweeper() *cache.Sweeper {
	return cache.NewSweeper(a.Cache, a.Settings.SweeperConfig())
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
