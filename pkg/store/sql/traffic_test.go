package sql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string {
	return &s
}

func newMockStore(t *testing.T, dialect Dialect) (*TrafficStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	s, err := NewTrafficStore(db, dialect, "")
	require.NoError(t, err)
	return s, mock
}

func TestNewTrafficStore(t *testing.T) {
	s, err := NewTrafficStore(nil, DuckDB, "")
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestDialectByName(t *testing.T) {
	for _, name := range []string{"duckdb", "snowflake", "databricks"} {
		d, err := DialectByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, d.Name)
	}
	_, err := DialectByName("oracle")
	assert.Error(t, err)

	assert.Equal(t, "strftime(occurred_at, '%Y%m')", DuckDB.Month("occurred_at"))
	assert.Equal(t, "TO_CHAR(occurred_at, 'YYYYMMDD')", Snowflake.Day("occurred_at"))
	assert.Equal(t, "date_trunc('WEEK', occurred_at)", Databricks.WeekStart("occurred_at"))
}

func TestTrafficStore_MonthlyByEntity_Snowflake(t *testing.T) {
	s, mock := newMockStore(t, Snowflake)
	f := domain.ReportFilter{
		FromPeriod: ptr("202501"),
		ToPeriod:   ptr("202503"),
		Flags:      domain.ReportFlags{ExcludeTest: true},
	}

	rows := sqlmock.NewRows([]string{"entity", "period", "total_count", "total_amount"}).
		AddRow("A", "202501", 1, 10.0).
		AddRow("A", "202502", 2, 20.0).
		AddRow("B", "202501", 5, 50.0)

	mock.ExpectQuery(regexp.QuoteMeta("TO_CHAR(occurred_at, 'YYYYMM') >= ? AND TO_CHAR(occurred_at, 'YYYYMM') <= ? AND is_test = FALSE AND is_refund = FALSE")).
		WithArgs("202501", "202503").
		WillReturnRows(rows)

	series, err := s.MonthlyByEntity(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "A", series[0].Entity)
	assert.Equal(t, []domain.SeriesPoint{
		{Period: "202501", Count: 1, Amount: 10},
		{Period: "202502", Count: 2, Amount: 20},
	}, series[0].Points)
	assert.Equal(t, "B", series[1].Entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrafficStore_DailyByEntity_Databricks(t *testing.T) {
	s, mock := newMockStore(t, Databricks)
	from := time.Date(2026, 2, 1, 15, 30, 0, 0, time.UTC)
	to := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	f := domain.ReportFilter{
		Entity:    ptr("A"),
		DateRange: &domain.DateRange{From: from, To: to},
		Flags:     domain.ReportFlags{IncludeRefunds: true},
	}

	mock.ExpectQuery(regexp.QuoteMeta("date_format(occurred_at, 'yyyyMMdd') AS period")).
		WithArgs("A", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"entity", "period", "total_count", "total_amount"}).
			AddRow("A", "20260201", 4, 1.5))

	series, err := s.DailyByEntity(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "20260201", series[0].Points[0].Period)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrafficStore_WeeklyByEntity(t *testing.T) {
	s, mock := newMockStore(t, Snowflake)
	monday := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("DATE_TRUNC('WEEK', occurred_at) AS week_start")).
		WillReturnRows(sqlmock.NewRows([]string{"entity", "week_start", "total_count"}).
			AddRow("A", monday, 7))

	cells, err := s.WeeklyByEntity(context.Background(), domain.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, []domain.MatrixCell{
		{RowKey: "A", Column: "2026-W05 2026-01-26..2026-02-01", Value: 7},
	}, cells)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrafficStore_QueryFailure(t *testing.T) {
	s, mock := newMockStore(t, Snowflake)
	mock.ExpectQuery("SELECT DISTINCT entity").WillReturnError(sql.ErrConnDone)

	_, err := s.Entities(context.Background(), domain.ReportFilter{})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
