package terminal

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/commands"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDocuments struct {
	mock.Mock
}

func (m *mockDocuments) Generate(ctx context.Context, f domain.ReportFilter, variant, style string) ([]byte, error) {
	args := m.Called(ctx, f, variant, style)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockDocuments) ClearCache(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockReports struct {
	mock.Mock
}

func (m *mockReports) Totals(ctx context.Context, f domain.ReportFilter) ([]domain.SeriesPoint, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.SeriesPoint), args.Error(1)
}

func (m *mockReports) Invalidate(ctx context.Context, queryType string) (int64, error) {
	args := m.Called(ctx, queryType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReports) ClearExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockIngester struct {
	mock.Mock
}

func (m *mockIngester) AddAll(ctx context.Context, records []store.TrafficRecord) error {
	return m.Called(ctx, records).Error(0)
}

type fixture struct {
	cli       *CLI
	out       *bytes.Buffer
	fs        afero.Fs
	docs      *mockDocuments
	reports   *mockReports
	ingester  *mockIngester
	opened    int
	closed    int
	configArg string
}

func newFixture() *fixture {
	f := &fixture{
		out:      &bytes.Buffer{},
		fs:       afero.NewMemMapFs(),
		docs:     new(mockDocuments),
		reports:  new(mockReports),
		ingester: new(mockIngester),
	}
	logger := zerolog.Nop()
	f.cli = NewCLI(Options{
		Open: func(_ context.Context, configPath string) (*commands.Services, func() error, error) {
			f.opened++
			f.configArg = configPath
			return &commands.Services{Documents: f.docs, Reports: f.reports, Ingester: f.ingester},
				func() error { f.closed++; return nil }, nil
		},
		Output: f.out,
		Fs:     f.fs,
		Now:    func() time.Time { return time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC) },
		Logger: &logger,
	})
	return f
}

func (f *fixture) run(args ...string) error {
	f.cli.rootCmd.SetArgs(args)
	return f.cli.Execute()
}

func TestCLI_Generate(t *testing.T) {
	f := newFixture()
	f.docs.On("Generate", mock.Anything, mock.MatchedBy(func(filter domain.ReportFilter) bool {
		return filter.Entity != nil && *filter.Entity == "acme" && filter.Flags.ExcludeTest
	}), "weekly-matrix", "").Return([]byte("%PDF-1.3 test"), nil).Once()

	err := f.run("generate", "--variant", "weekly-matrix", "--entity", "acme", "--exclude-test", "-c", "atlas.yaml")
	require.NoError(t, err)

	data, err := afero.ReadFile(f.fs, "weekly-matrix_20260402_080000.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 test", string(data))
	assert.Contains(t, f.out.String(), "wrote weekly-matrix_20260402_080000.pdf")
	assert.Equal(t, "atlas.yaml", f.configArg)
	assert.Equal(t, 1, f.opened)
	assert.Equal(t, 1, f.closed)
	f.docs.AssertExpectations(t)
}

func TestCLI_GenerateIntoDirectory(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.fs.MkdirAll("/out", 0o755))
	f.docs.On("Generate", mock.Anything, mock.Anything, "trend", "bar").Return([]byte("pdf"), nil).Once()

	require.NoError(t, f.run("generate", "--style", "bar", "-o", "/out"))

	exists, err := afero.Exists(f.fs, "/out/trend_20260402_080000.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCLI_GenerateRejectsBadInputBeforeOpening(t *testing.T) {
	f := newFixture()
	err := f.run("generate", "--variant", "pie")
	assert.Error(t, err)
	assert.Zero(t, f.opened)

	f = newFixture()
	err = f.run("generate", "--start", "2026-01-01")
	assert.ErrorIs(t, err, domain.ErrBadFilter)
	assert.Zero(t, f.opened)
}

func TestCLI_GenerateNoData(t *testing.T) {
	f := newFixture()
	f.docs.On("Generate", mock.Anything, mock.Anything, "trend", "").
		Return(nil, &domain.NoDataError{Document: "trend"}).Once()

	err := f.run("generate")
	assert.ErrorIs(t, err, domain.ErrNoData)
	assert.Equal(t, 1, f.closed)
}

func TestCLI_Totals(t *testing.T) {
	f := newFixture()
	f.reports.On("Totals", mock.Anything, mock.Anything).Return([]domain.SeriesPoint{
		{Period: "202603", Count: 5, Amount: 2.5},
	}, nil).Once()

	require.NoError(t, f.run("totals", "--from", "202601"))

	assert.Contains(t, f.out.String(), "Mar 2026")
	assert.Contains(t, f.out.String(), "Total: 5 records, 2.50")
	filter := f.reports.Calls[0].Arguments.Get(1).(domain.ReportFilter)
	require.NotNil(t, filter.FromPeriod)
	assert.Equal(t, "202601", *filter.FromPeriod)
}

func TestCLI_Ingest(t *testing.T) {
	f := newFixture()
	csv := "id,entity,category,occurred_at,count,amount,is_test,is_refund\n" +
		"r1,acme,api,2026-01-05T10:00:00Z,3,1.5,false,false\n" +
		"r2,acme,api,2026-01-06,1,0.5,true,false\n" +
		"r3,globex,web,2026-02-01T00:00:00Z,2,4,false,true\n"
	require.NoError(t, afero.WriteFile(f.fs, "traffic.csv", []byte(csv), 0o644))

	var batches [][]store.TrafficRecord
	f.ingester.On("AddAll", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		batches = append(batches, args.Get(1).([]store.TrafficRecord))
	}).Return(nil)

	require.NoError(t, f.run("ingest", "traffic.csv", "--batch-size", "2"))

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 1)
	assert.True(t, batches[0][1].IsTest)
	assert.True(t, batches[1][0].IsRefund)
	assert.Equal(t, int64(3), batches[0][0].Count)
	assert.Contains(t, f.out.String(), "ingested 3 records")
}

func TestCLI_IngestStoreFailure(t *testing.T) {
	f := newFixture()
	require.NoError(t, afero.WriteFile(f.fs, "traffic.csv",
		[]byte("id,entity,occurred_at\nr1,acme,2026-01-05\n"), 0o644))
	f.ingester.On("AddAll", mock.Anything, mock.Anything).Return(errors.New("duplicate key")).Once()

	err := f.run("ingest", "traffic.csv")
	assert.ErrorContains(t, err, "duplicate key")
}

func TestCLI_CacheCommands(t *testing.T) {
	f := newFixture()
	f.reports.On("ClearExpired", mock.Anything).Return(int64(4), nil).Once()
	f.reports.On("Invalidate", mock.Anything, "entities").Return(int64(1), nil).Once()
	f.docs.On("ClearCache", mock.Anything).Return(2, nil).Once()

	require.NoError(t, f.run("cache", "clear-expired"))
	require.NoError(t, f.run("cache", "remove", "entities"))
	require.NoError(t, f.run("documents", "clear"))
	assert.Error(t, f.run("cache", "remove", "bogus"))

	out := f.out.String()
	assert.Contains(t, out, "removed 4 expired entries")
	assert.Contains(t, out, "removed 1 entities entries")
	assert.Contains(t, out, "removed 2 cached documents")
	assert.Equal(t, 3, f.opened)
	assert.Equal(t, 3, f.closed)
	f.reports.AssertExpectations(t)
	f.docs.AssertExpectations(t)
}
