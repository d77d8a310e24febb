package report

import (
	"context"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/cache"
	"github.com/de-tools/report-atlas/pkg/services/cache/keys"
)

// Cache type tags, one per logical query.
const (
	TypeMonthlyByEntity = "monthly_by_entity"
	TypeDailyByEntity   = "daily_by_entity"
	TypeWeeklyMatrix    = "weekly_matrix"
	TypeEntities        = "entities"
	TypeTotals          = "totals"
)

// Types lists every cache type tag the service writes.
var Types = []string{TypeMonthlyByEntity, TypeDailyByEntity, TypeWeeklyMatrix, TypeEntities, TypeTotals}

// DataSource is the authoritative data access for reports.
type DataSource interface {
	MonthlyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.EntitySeries, error)
	DailyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.EntitySeries, error)
	WeeklyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.MatrixCell, error)
	Entities(ctx context.Context, f domain.ReportFilter) ([]string, error)
	Totals(ctx context.Context, f domain.ReportFilter) ([]domain.SeriesPoint, error)
}

// Service answers report queries from the result cache and falls back to the data source.
// It is itself a DataSource.
type Service struct {
	source DataSource
	cache  *cache.Cache
	keys   keys.Deriver

	series   cache.Typed[[]domain.EntitySeries]
	cells    cache.Typed[[]domain.MatrixCell]
	entities cache.Typed[[]string]
	points   cache.Typed[[]domain.SeriesPoint]
}

func NewService(source DataSource, c *cache.Cache) *Service {
	return &Service{
		source:   source,
		cache:    c,
		keys:     keys.NewDeriver(),
		series:   cache.JSON[[]domain.EntitySeries](c),
		cells:    cache.JSON[[]domain.MatrixCell](c),
		entities: cache.JSON[[]string](c),
		points:   cache.JSON[[]domain.SeriesPoint](c),
	}
}

func (s *Service) MonthlyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.EntitySeries, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	key := s.keys.ResultKey(TypeMonthlyByEntity, f)
	return s.series.Fetch(ctx, key, s.cache.Config().DefaultTTL, func(ctx context.Context) ([]domain.EntitySeries, error) {
		return s.source.MonthlyByEntity(ctx, f)
	})
}

func (s *Service) DailyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.EntitySeries, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	key := s.keys.ResultKey(TypeDailyByEntity, f)
	return s.series.Fetch(ctx, key, s.cache.Config().DefaultTTL, func(ctx context.Context) ([]domain.EntitySeries, error) {
		return s.source.DailyByEntity(ctx, f)
	})
}

func (s *Service) WeeklyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.MatrixCell, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	key := s.keys.ResultKey(TypeWeeklyMatrix, f)
	return s.cells.Fetch(ctx, key, s.cache.Config().DefaultTTL, func(ctx context.Context) ([]domain.MatrixCell, error) {
		return s.source.WeeklyByEntity(ctx, f)
	})
}

// Entities changes slowly and is kept for the extended TTL.
func (s *Service) Entities(ctx context.Context, f domain.ReportFilter) ([]string, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	key := s.keys.ResultKey(TypeEntities, f)
	return s.entities.Fetch(ctx, key, s.cache.Config().ExtendedTTL, func(ctx context.Context) ([]string, error) {
		return s.source.Entities(ctx, f)
	})
}

func (s *Service) Totals(ctx context.Context, f domain.ReportFilter) ([]domain.SeriesPoint, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	key := s.keys.ResultKey(TypeTotals, f)
	return s.points.Fetch(ctx, key, s.cache.Config().DefaultTTL, func(ctx context.Context) ([]domain.SeriesPoint, error) {
		return s.source.Totals(ctx, f)
	})
}

// Invalidate removes the cached results of one query type.
func (s *Service) Invalidate(ctx context.Context, queryType string) (int64, error) {
	return s.cache.RemoveByType(ctx, queryType)
}

func (s *Service) ClearExpired(ctx context.Context) (int64, error) {
	return s.cache.ClearExpired(ctx)
}
