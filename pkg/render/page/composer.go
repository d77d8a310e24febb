package page

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/render/assets"
	"github.com/de-tools/report-atlas/pkg/render/canvas"
	"github.com/rs/zerolog"
)

const (
	DefaultBrand    = "REPORT ATLAS"
	timestampLayout = "2006-01-02 15:04"
	logoMaxHeight   = 44.0
	logoMaxWidth    = 160.0
)

// Composer draws branded page frames onto a canvas and tracks page numbers.
// A Composer renders a single document and is not safe for concurrent use.
type Composer struct {
	canvas canvas.Canvas
	logo   *assets.Logo
	brand  string
	now    func() time.Time

	ctx     context.Context
	title   string
	image   *assets.Image
	release func()
	pages   int
}

type Option func(*Composer)

func WithBrand(brand string) Option {
	return func(c *Composer) {
		c.brand = brand
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		c.now = now
	}
}

func NewComposer(c canvas.Canvas, logo *assets.Logo, opts ...Option) *Composer {
	composer := &Composer{
		canvas:  c,
		logo:    logo,
		brand:   DefaultBrand,
		now:     time.Now,
		ctx:     context.Background(),
		release: func() {},
	}
	for _, opt := range opts {
		opt(composer)
	}
	return composer
}

// BeginDocument acquires the logo and returns the canvas the document is drawn on.
func (c *Composer) BeginDocument(ctx context.Context, title string) canvas.Canvas {
	c.ctx = ctx
	c.title = title
	c.pages = 0
	c.image, c.release = c.logo.Acquire(ctx)
	return c.canvas
}

func (c *Composer) Canvas() canvas.Canvas {
	return c.canvas
}

// Pages is the number of pages started so far.
func (c *Composer) Pages() int {
	return c.pages
}

// NextPage starts a new page and draws its frame. The first page of a document is the cover.
func (c *Composer) NextPage() ContentArea {
	c.canvas.AddPage()
	c.pages++
	return c.DrawPageFrame(c.title, c.pages, c.pages == 1)
}

// DrawPageFrame clears the current page and draws the header and footer.
func (c *Composer) DrawPageFrame(title string, pageNumber int, cover bool) ContentArea {
	width, height := c.canvas.PageSize()

	c.canvas.SetFillColor(ColorBackground)
	c.canvas.Rect(0, 0, width, height, canvas.StyleFill)

	if cover {
		c.drawCoverHeader(title, width)
	} else {
		c.drawSlimHeader(width)
	}
	c.drawFooter(pageNumber, width, height)

	return ContentAreaFor(width, height, cover)
}

// EndDocument releases the logo and serializes the document.
func (c *Composer) EndDocument() ([]byte, error) {
	defer c.Discard()

	var buf bytes.Buffer
	if err := c.canvas.Output(&buf); err != nil {
		return nil, &domain.RenderError{Stage: "output", Err: err}
	}
	return buf.Bytes(), nil
}

// Discard releases the logo without producing output. It is safe to call after EndDocument.
func (c *Composer) Discard() {
	c.release()
	c.release = func() {}
}

func (c *Composer) drawCoverHeader(title string, width float64) {
	cv := c.canvas
	cv.SetFillColor(ColorHeader)
	cv.Rect(0, 0, width, CoverHeaderHeight, canvas.StyleFill)

	if c.image != nil {
		c.drawLogo()
	} else {
		cv.SetTextColor(ColorTextLight)
		cv.SetFont(canvas.FontBold, 18)
		cv.Text(Margin, CoverHeaderHeight/2+6, c.brand)
	}

	stamp := c.now().Format(timestampLayout)
	cv.SetFont(canvas.FontRegular, 9)
	cv.SetTextColor(ColorTextLight)
	cv.Text(width-Margin-cv.StringWidth(stamp), CoverHeaderHeight/2+3, stamp)

	cv.SetFillColor(ColorTitleBar)
	cv.Rect(0, CoverHeaderHeight, width, TitleBarHeight, canvas.StyleFill)
	cv.SetFont(canvas.FontBold, 14)
	cv.SetTextColor(ColorTextLight)
	cv.Text((width-cv.StringWidth(title))/2, CoverHeaderHeight+TitleBarHeight/2+5, title)
}

func (c *Composer) drawLogo() {
	h := logoMaxHeight
	w := h * c.image.AspectRatio()
	if w > logoMaxWidth {
		w = logoMaxWidth
		h = w / c.image.AspectRatio()
	}
	y := (CoverHeaderHeight - h) / 2
	err := c.canvas.Image(c.image.Name, c.image.Type, c.image.Data, Margin, y, w, h)
	if err != nil {
		zerolog.Ctx(c.ctx).Debug().
			Err(&domain.AssetLoadError{Path: c.image.Name, Err: err}).
			Msg("logo could not be placed")
		c.image = nil
	}
}

func (c *Composer) drawSlimHeader(width float64) {
	cv := c.canvas
	cv.SetFillColor(ColorHeader)
	cv.Rect(0, 0, width, SlimHeaderHeight, canvas.StyleFill)
	cv.SetFont(canvas.FontBold, 10)
	cv.SetTextColor(ColorTextLight)
	cv.Text(Margin, SlimHeaderHeight/2+4, c.brand)
}

func (c *Composer) drawFooter(pageNumber int, width, height float64) {
	cv := c.canvas
	label := fmt.Sprintf("PAGE %d", pageNumber)
	cv.SetFont(canvas.FontRegular, 8)
	cv.SetTextColor(ColorTextMuted)
	cv.Text((width-cv.StringWidth(label))/2, height-FooterHeight/2+3, label)
}
