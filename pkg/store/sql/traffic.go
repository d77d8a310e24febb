package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

const (
	DefaultTable = "traffic_records"
	timeColumn   = "occurred_at"
)

// TrafficStore runs the report aggregations against any database/sql connection.
type TrafficStore struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

func NewTrafficStore(db *sql.DB, dialect Dialect, table string) (*TrafficStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if table == "" {
		table = DefaultTable
	}
	return &TrafficStore{
		db:      db,
		dialect: dialect,
		table:   table,
	}, nil
}

func (s *TrafficStore) MonthlyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.EntitySeries, error) {
	rows, err := s.aggregate(ctx, s.dialect.Month(timeColumn), f)
	if err != nil {
		return nil, fmt.Errorf("monthly by entity: %w", err)
	}
	return groupByEntity(rows), nil
}

func (s *TrafficStore) DailyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.EntitySeries, error) {
	rows, err := s.aggregate(ctx, s.dialect.Day(timeColumn), f)
	if err != nil {
		return nil, fmt.Errorf("daily by entity: %w", err)
	}
	return groupByEntity(rows), nil
}

func (s *TrafficStore) WeeklyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.MatrixCell, error) {
	logger := zerolog.Ctx(ctx)
	where, args := s.where(f)
	week := s.dialect.WeekStart(timeColumn)
	query := fmt.Sprintf(`
		SELECT entity, %[1]s AS week_start, CAST(SUM(count) AS BIGINT) AS total_count
		FROM %[2]s
		%[3]s
		GROUP BY entity, %[1]s
		ORDER BY entity, week_start
	`, week, s.table, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("weekly by entity query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close weekly query rows")
		}
	}(rows)

	var cells []domain.MatrixCell
	for rows.Next() {
		var agg store.WeeklyAggregate
		if err := rows.Scan(&agg.Entity, &agg.WeekStart, &agg.Count); err != nil {
			return nil, err
		}
		cells = append(cells, domain.MatrixCell{
			RowKey: agg.Entity,
			Column: domain.WeekLabel(agg.WeekStart),
			Value:  float64(agg.Count),
		})
	}
	return cells, rows.Err()
}

func (s *TrafficStore) Entities(ctx context.Context, f domain.ReportFilter) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	where, args := s.where(f)
	query := fmt.Sprintf(`SELECT DISTINCT entity FROM %s %s ORDER BY entity`, s.table, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("entities query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close entities query rows")
		}
	}(rows)

	entities := make([]string, 0)
	for rows.Next() {
		var entity string
		if err := rows.Scan(&entity); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func (s *TrafficStore) Totals(ctx context.Context, f domain.ReportFilter) ([]domain.SeriesPoint, error) {
	logger := zerolog.Ctx(ctx)
	where, args := s.where(f)
	month := s.dialect.Month(timeColumn)
	query := fmt.Sprintf(`
		SELECT %[1]s AS period, CAST(SUM(count) AS BIGINT) AS total_count, SUM(amount) AS total_amount
		FROM %[2]s
		%[3]s
		GROUP BY %[1]s
		ORDER BY period
	`, month, s.table, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("totals query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close totals query rows")
		}
	}(rows)

	points := make([]domain.SeriesPoint, 0)
	for rows.Next() {
		var p domain.SeriesPoint
		if err := rows.Scan(&p.Period, &p.Count, &p.Amount); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *TrafficStore) aggregate(ctx context.Context, periodExpr string, f domain.ReportFilter) ([]store.PeriodAggregate, error) {
	logger := zerolog.Ctx(ctx)
	where, args := s.where(f)
	query := fmt.Sprintf(`
		SELECT entity, %[1]s AS period, CAST(SUM(count) AS BIGINT) AS total_count, SUM(amount) AS total_amount
		FROM %[2]s
		%[3]s
		GROUP BY entity, %[1]s
		ORDER BY entity, period
	`, periodExpr, s.table, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close aggregate query rows")
		}
	}(rows)

	var aggregates []store.PeriodAggregate
	for rows.Next() {
		var agg store.PeriodAggregate
		if err := rows.Scan(&agg.Entity, &agg.Period, &agg.Count, &agg.Amount); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

func (s *TrafficStore) where(f domain.ReportFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	month := s.dialect.Month(timeColumn)
	if f.FromPeriod != nil {
		conditions = append(conditions, month+" >= ?")
		args = append(args, *f.FromPeriod)
	}
	if f.ToPeriod != nil {
		conditions = append(conditions, month+" <= ?")
		args = append(args, *f.ToPeriod)
	}
	if f.Entity != nil {
		conditions = append(conditions, "entity = ?")
		args = append(args, *f.Entity)
	}
	if f.DateRange != nil {
		conditions = append(conditions, timeColumn+" >= ?", timeColumn+" < ?")
		args = append(args,
			truncateDay(f.DateRange.From),
			truncateDay(f.DateRange.To).AddDate(0, 0, 1),
		)
	}
	if f.Flags.ExcludeTest {
		conditions = append(conditions, "is_test = FALSE")
	}
	if !f.Flags.IncludeRefunds {
		conditions = append(conditions, "is_refund = FALSE")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func groupByEntity(rows []store.PeriodAggregate) []domain.EntitySeries {
	var series []domain.EntitySeries
	for _, row := range rows {
		if len(series) == 0 || series[len(series)-1].Entity != row.Entity {
			series = append(series, domain.EntitySeries{Entity: row.Entity})
		}
		last := &series[len(series)-1]
		last.Points = append(last.Points, domain.SeriesPoint{
			Period: row.Period,
			Count:  row.Count,
			Amount: row.Amount,
		})
	}
	return series
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
