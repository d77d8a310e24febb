package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/render/assets"
	"github.com/de-tools/report-atlas/pkg/render/canvas"
	"github.com/de-tools/report-atlas/pkg/render/chart"
	"github.com/de-tools/report-atlas/pkg/render/page"
	"github.com/de-tools/report-atlas/pkg/render/table"
	"github.com/de-tools/report-atlas/pkg/services/cache/keys"
	"github.com/rs/zerolog"
)

const (
	fileNameLayout = "20060102_150405"
	chartShare     = 0.55
	sectionGap     = 10.0
)

var periodHeaders = []string{"Period", "Count", "Amount"}

// Source provides the grouped rows documents are built from.
type Source interface {
	MonthlyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.EntitySeries, error)
	DailyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.EntitySeries, error)
	WeeklyByEntity(ctx context.Context, f domain.ReportFilter) ([]domain.MatrixCell, error)
}

// BlobStore keeps rendered documents by name.
type BlobStore interface {
	Read(ctx context.Context, name string) (*store.Blob, error)
	Write(ctx context.Context, name string, data []byte) error
	DeleteAll(ctx context.Context) (int, error)
}

type Config struct {
	// MaxAge is how long a cached document stays fresh after it was written.
	MaxAge time.Duration
	Brand  string
	// DailyWindow is the number of days a daily document covers when no date range is given.
	DailyWindow int
}

func DefaultConfig() Config {
	return Config{
		MaxAge:      24 * time.Hour,
		Brand:       page.DefaultBrand,
		DailyWindow: 30,
	}
}

// Document is a rendered document with the logical content it was built from.
type Document struct {
	Variant   Variant
	Style     string
	Filter    domain.ReportFilter
	Pages     []domain.Page
	Matrix    *table.Matrix
	PageCount int
	Data      []byte
	Cached    bool
}

type CanvasFactory func(title string, created time.Time) canvas.Canvas

type Assembler struct {
	source    Source
	blobs     BlobStore
	logo      *assets.Logo
	keys      keys.Deriver
	engine    *table.Engine
	config    Config
	now       func() time.Time
	newCanvas CanvasFactory
}

type Option func(*Assembler)

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

func WithCanvas(factory CanvasFactory) Option {
	return func(a *Assembler) {
		a.newCanvas = factory
	}
}

func WithTableOptions(opts table.Options) Option {
	return func(a *Assembler) {
		a.engine = table.NewEngine(opts)
	}
}

// NewAssembler builds documents from source. blobs and logo may be nil.
func NewAssembler(source Source, blobs BlobStore, logo *assets.Logo, config Config, opts ...Option) *Assembler {
	defaults := DefaultConfig()
	if config.MaxAge <= 0 {
		config.MaxAge = defaults.MaxAge
	}
	if config.Brand == "" {
		config.Brand = defaults.Brand
	}
	if config.DailyWindow <= 0 {
		config.DailyWindow = defaults.DailyWindow
	}

	a := &Assembler{
		source: source,
		blobs:  blobs,
		logo:   logo,
		keys:   keys.NewDeriver(),
		engine: table.NewEngine(table.DefaultOptions()),
		config: config,
		now:    time.Now,
		newCanvas: func(title string, created time.Time) canvas.Canvas {
			return canvas.NewPDF(title, created)
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generate renders the document variant for the filter and returns its bytes.
func (a *Assembler) Generate(ctx context.Context, f domain.ReportFilter, variant, style string) ([]byte, error) {
	doc, err := a.Compose(ctx, f, variant, style)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

// Compose is Generate returning the document with its logical pages.
func (a *Assembler) Compose(ctx context.Context, f domain.ReportFilter, variantName, styleName string) (*Document, error) {
	logger := zerolog.Ctx(ctx)

	v, err := ParseVariant(variantName)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if v == VariantDaily && f.DateRange == nil {
		f.DateRange = a.defaultWindow()
	}

	doc := &Document{Variant: v, Style: v.Style(styleName), Filter: f}
	cacheable := a.blobs != nil && v.Cacheable(f)
	name := a.CacheName(v, doc.Style, f)

	if cacheable {
		if data, ok := a.readCached(ctx, name); ok {
			logger.Debug().Str("document", name).Msg("serving cached document")
			doc.Data = data
			doc.Cached = true
			return doc, nil
		}
	}

	switch v {
	case VariantWeeklyMatrix:
		err = a.composeMatrix(ctx, doc)
	default:
		err = a.composeSeries(ctx, doc)
	}
	if err != nil {
		return nil, err
	}

	if cacheable {
		a.writeCached(ctx, name, doc.Data)
	}
	logger.Info().
		Str("variant", string(v)).
		Str("style", doc.Style).
		Int("pages", doc.PageCount).
		Int("bytes", len(doc.Data)).
		Msg("document generated")
	return doc, nil
}

// ClearCache deletes every cached document and returns how many were removed.
// Failures are logged and reported as the partial count.
func (a *Assembler) ClearCache(ctx context.Context) (int, error) {
	if a.blobs == nil {
		return 0, nil
	}
	n, err := a.blobs.DeleteAll(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(&domain.CacheIOError{Op: "delete all", Key: "documents", Err: err}).
			Msg("document cache clear failed")
	}
	zerolog.Ctx(ctx).Info().Int("deleted", n).Msg("document cache cleared")
	return n, nil
}

// CacheName is the byte-cache entry name of a document.
func (a *Assembler) CacheName(v Variant, style string, f domain.ReportFilter) string {
	return fmt.Sprintf("%s_%s_%s.pdf", v, style, a.keys.Fragment(f))
}

// FileName is the download name of a document generated at the given time.
func FileName(v Variant, at time.Time) string {
	return fmt.Sprintf("%s_%s.pdf", v, at.Format(fileNameLayout))
}

func (a *Assembler) defaultWindow() *domain.DateRange {
	now := a.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return &domain.DateRange{From: today.AddDate(0, 0, -a.config.DailyWindow), To: today}
}

func (a *Assembler) readCached(ctx context.Context, name string) ([]byte, bool) {
	blob, err := a.blobs.Read(ctx, name)
	if errors.Is(err, store.ErrBlobNotFound) {
		return nil, false
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(&domain.CacheIOError{Op: "read", Key: name, Err: err}).
			Msg("document cache read failed, rendering")
		return nil, false
	}
	if a.now().Sub(blob.ModifiedAt) >= a.config.MaxAge {
		return nil, false
	}
	return blob.Data, true
}

func (a *Assembler) writeCached(ctx context.Context, name string, data []byte) {
	if err := a.blobs.Write(ctx, name, data); err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(&domain.CacheIOError{Op: "write", Key: name, Err: err}).
			Msg("document cache write failed")
	}
}

func (a *Assembler) composeSeries(ctx context.Context, doc *Document) error {
	var (
		series []domain.EntitySeries
		err    error
	)
	if doc.Variant == VariantDaily {
		series, err = a.source.DailyByEntity(ctx, doc.Filter)
	} else {
		series, err = a.source.MonthlyByEntity(ctx, doc.Filter)
	}
	if err != nil {
		return fmt.Errorf("fetch %s rows: %w", doc.Variant, err)
	}

	doc.Pages = BuildPages(series)
	if len(doc.Pages) == 0 {
		return &domain.NoDataError{Document: string(doc.Variant)}
	}

	composer := a.composer(doc.Variant)
	composer.BeginDocument(ctx, doc.Variant.Title())
	defer composer.Discard()
	style := chart.Style(doc.Style)
	for _, p := range doc.Pages {
		if err := a.drawSeriesPage(composer, p, style); err != nil {
			return err
		}
	}
	return a.finish(composer, doc)
}

func (a *Assembler) drawSeriesPage(composer *page.Composer, p domain.Page, style chart.Style) error {
	area := composer.NextPage()
	chartArea, tableArea := area.Split(chartShare, sectionGap)

	model, err := chart.Build(p.Points, style, p.Title)
	if err != nil {
		return err
	}
	if err := chart.Draw(composer.Canvas(), model, chartArea); err != nil {
		return err
	}

	rows := make([][]string, len(p.Points))
	for i, point := range p.Points {
		label, err := chart.FormatPeriod(point.Period)
		if err != nil {
			return &domain.RenderError{Stage: "table", Err: err}
		}
		rows[i] = []string{label, table.FormatCell(float64(point.Count)), fmt.Sprintf("%.2f", point.Amount)}
	}
	_, err = a.engine.RenderRows(composer, periodHeaders, rows, tableArea)
	return err
}

func (a *Assembler) composeMatrix(ctx context.Context, doc *Document) error {
	cells, err := a.source.WeeklyByEntity(ctx, doc.Filter)
	if err != nil {
		return fmt.Errorf("fetch %s rows: %w", doc.Variant, err)
	}

	m := table.BuildMatrix("Entity", cells, table.ByWeekIndex)
	if len(m.Rows) == 0 {
		return &domain.NoDataError{Document: string(doc.Variant)}
	}
	m = m.WithTotalRow(domain.AllEntities)
	doc.Matrix = &m

	composer := a.composer(doc.Variant)
	composer.BeginDocument(ctx, doc.Variant.Title())
	defer composer.Discard()
	if _, err := a.engine.RenderMatrix(composer, m, composer.NextPage()); err != nil {
		return err
	}
	return a.finish(composer, doc)
}

func (a *Assembler) composer(v Variant) *page.Composer {
	return page.NewComposer(
		a.newCanvas(v.Title(), a.now()),
		a.logo,
		page.WithBrand(a.config.Brand),
		page.WithClock(a.now),
	)
}

func (a *Assembler) finish(composer *page.Composer, doc *Document) error {
	data, err := composer.EndDocument()
	if err != nil {
		return err
	}
	doc.Data = data
	doc.PageCount = composer.Pages()
	return nil
}
