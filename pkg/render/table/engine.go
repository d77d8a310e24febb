package table

import (
	"fmt"
	"math"
	"strconv"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/render/canvas"
	"github.com/de-tools/report-atlas/pkg/render/page"
)

const epsilon = 1e-9

var (
	colorHeaderFill = canvas.Color{R: 30, G: 58, B: 95}
	colorHeaderText = canvas.Color{R: 255, G: 255, B: 255}
	colorBorder     = canvas.Color{R: 200, G: 205, B: 210}
	colorAltRow     = canvas.Color{R: 241, G: 245, B: 249}
	colorRowFill    = canvas.Color{R: 255, G: 255, B: 255}
	colorText       = canvas.Color{R: 44, G: 62, B: 80}
)

// Pager hands out continuation pages while a table is drawn.
type Pager interface {
	Canvas() canvas.Canvas
	NextPage() page.ContentArea
}

type Options struct {
	FirstColumnWidth float64
	RowHeight        float64
	FontSize         float64
	HeaderFontSize   float64
	Padding          float64
}

func DefaultOptions() Options {
	return Options{
		FirstColumnWidth: 120,
		RowHeight:        16,
		FontSize:         7,
		HeaderFontSize:   7,
		Padding:          4,
	}
}

// Result describes where the rows of a table ended up. RowsByPage holds row indexes per page
// in emission order. EndY is the bottom of the last drawn row.
type Result struct {
	Pages      int
	RowsByPage [][]int
	EndY       float64
}

type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.FirstColumnWidth <= 0 {
		opts.FirstColumnWidth = defaults.FirstColumnWidth
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = defaults.RowHeight
	}
	if opts.FontSize <= 0 {
		opts.FontSize = defaults.FontSize
	}
	if opts.HeaderFontSize <= 0 {
		opts.HeaderFontSize = defaults.HeaderFontSize
	}
	if opts.Padding <= 0 {
		opts.Padding = defaults.Padding
	}
	return &Engine{opts: opts}
}

func (e *Engine) Options() Options {
	return e.opts
}

// MatrixHeaderHeight measures the widest rotated sub-label and returns the height of the header:
// the rotated band plus one unrotated line.
func (e *Engine) MatrixHeaderHeight(c canvas.Canvas, m Matrix) float64 {
	return e.rotatedBand(c, m) + e.opts.RowHeight
}

func (e *Engine) rotatedBand(c canvas.Canvas, m Matrix) float64 {
	c.SetFont(canvas.FontRegular, e.opts.HeaderFontSize)
	widest := 0.0
	for _, column := range m.Columns {
		rotated, _ := headerParts(column)
		for _, s := range rotated {
			widest = math.Max(widest, c.StringWidth(s))
		}
	}
	return widest + 2*e.opts.Padding
}

// RenderMatrix draws the matrix starting at the top of area, continuing on new pages from p as
// rows run out of space. Missing values are drawn as empty cells.
func (e *Engine) RenderMatrix(p Pager, m Matrix, area page.ContentArea) (Result, error) {
	if m.RowCount() == 0 {
		return Result{}, &domain.RenderError{Stage: "table", Err: fmt.Errorf("matrix has no rows")}
	}

	c := p.Canvas()
	band := e.rotatedBand(c, m)
	layout := NewLayout(area, e.opts.FirstColumnWidth, len(m.Columns), e.opts.RowHeight, band+e.opts.RowHeight)

	header := func(l Layout, top float64) {
		e.drawMatrixHeader(c, l, m, top, band)
	}
	row := func(l Layout, i int, top float64) {
		label, values := m.RowAt(i)
		cells := make([]string, len(m.Columns)+1)
		cells[0] = label
		for j, column := range m.Columns {
			if v, ok := values[column]; ok {
				cells[j+1] = FormatCell(v)
			}
		}
		e.drawRow(c, l, i, top, cells)
	}
	return e.paginate(p, area, layout, m.RowCount(), header, row)
}

// RenderRows draws a flat table with a one line header.
func (e *Engine) RenderRows(p Pager, headers []string, rows [][]string, area page.ContentArea) (Result, error) {
	if len(headers) == 0 {
		return Result{}, &domain.RenderError{Stage: "table", Err: fmt.Errorf("table has no columns")}
	}
	if len(rows) == 0 {
		return Result{Pages: 0, EndY: area.Top}, nil
	}

	c := p.Canvas()
	layout := NewLayout(area, e.opts.FirstColumnWidth, len(headers)-1, e.opts.RowHeight, e.opts.RowHeight)

	header := func(l Layout, top float64) {
		e.drawFlatHeader(c, l, headers, top)
	}
	row := func(l Layout, i int, top float64) {
		cells := make([]string, len(headers))
		copy(cells, rows[i])
		e.drawRow(c, l, i, top, cells)
	}
	return e.paginate(p, area, layout, len(rows), header, row)
}

func (e *Engine) paginate(
	p Pager,
	area page.ContentArea,
	layout Layout,
	rows int,
	header func(Layout, float64),
	row func(Layout, int, float64),
) (Result, error) {
	fits := func(a page.ContentArea) bool {
		return a.Top+layout.HeaderHeight+layout.RowHeight <= a.Bottom+epsilon
	}

	if !fits(area) {
		area = p.NextPage()
		if !fits(area) {
			return Result{}, e.tooSmall(area, layout)
		}
	}

	result := Result{Pages: 1, RowsByPage: [][]int{{}}}
	layout = layout.withLeft(area.Left)
	header(layout, area.Top)
	y := area.Top + layout.HeaderHeight

	for i := 0; i < rows; i++ {
		if y+layout.RowHeight > area.Bottom+epsilon {
			area = p.NextPage()
			if !fits(area) {
				return result, e.tooSmall(area, layout)
			}
			layout = layout.withLeft(area.Left)
			result.Pages++
			result.RowsByPage = append(result.RowsByPage, []int{})
			header(layout, area.Top)
			y = area.Top + layout.HeaderHeight
		}

		row(layout, i, y)
		last := len(result.RowsByPage) - 1
		result.RowsByPage[last] = append(result.RowsByPage[last], i)
		y += layout.RowHeight
	}

	result.EndY = y
	return result, nil
}

func (e *Engine) tooSmall(area page.ContentArea, layout Layout) error {
	return &domain.RenderError{
		Stage: "table",
		Err: fmt.Errorf("page content height %.1f cannot hold the header (%.1f) and one row (%.1f)",
			area.Height(), layout.HeaderHeight, layout.RowHeight),
	}
}

func (e *Engine) drawMatrixHeader(c canvas.Canvas, l Layout, m Matrix, top, band float64) {
	c.SetDrawColor(colorBorder)
	c.SetLineWidth(0.4)
	c.SetFillColor(colorHeaderFill)
	c.SetTextColor(colorHeaderText)
	c.SetFont(canvas.FontBold, e.opts.HeaderFontSize)

	first := l.Width(0)
	c.Rect(l.X(0), top, first, l.HeaderHeight, canvas.StyleFillDraw)
	c.Text(l.X(0)+e.opts.Padding, top+l.HeaderHeight-e.textOffset(), fitText(c, m.RowHeader, first-2*e.opts.Padding))

	c.SetFont(canvas.FontRegular, e.opts.HeaderFontSize)
	for j, column := range m.Columns {
		x, w := l.X(j+1), l.Width(j+1)
		rotated, below := headerParts(column)

		c.Rect(x, top, w, l.HeaderHeight, canvas.StyleFillDraw)
		c.Line(x, top+band, x+w, top+band)
		c.Line(x+w/2, top, x+w/2, top+band)

		for half, s := range rotated {
			if s == "" {
				continue
			}
			center := x + w/4 + float64(half)*w/2
			baseX := center + e.opts.HeaderFontSize/3
			baseY := top + band - (band-c.StringWidth(s))/2
			c.RotatedText(baseX, baseY, 90, s)
		}

		if below != "" {
			c.Text(x+(w-c.StringWidth(below))/2, top+l.HeaderHeight-e.textOffset(), below)
		}
	}
}

func (e *Engine) drawFlatHeader(c canvas.Canvas, l Layout, headers []string, top float64) {
	c.SetDrawColor(colorBorder)
	c.SetLineWidth(0.4)
	c.SetFillColor(colorHeaderFill)
	c.SetTextColor(colorHeaderText)
	c.SetFont(canvas.FontBold, e.opts.HeaderFontSize)

	for j, h := range headers {
		x, w := l.X(j), l.Width(j)
		c.Rect(x, top, w, l.HeaderHeight, canvas.StyleFillDraw)
		c.Text(x+e.opts.Padding, top+l.HeaderHeight-e.textOffset(), fitText(c, h, w-2*e.opts.Padding))
	}
}

// drawRow draws the label cell left aligned and value cells right aligned. Empty values keep their border.
func (e *Engine) drawRow(c canvas.Canvas, l Layout, index int, top float64, cells []string) {
	fill := colorRowFill
	if index%2 == 1 {
		fill = colorAltRow
	}
	c.SetDrawColor(colorBorder)
	c.SetFillColor(fill)
	c.SetTextColor(colorText)
	c.SetFont(canvas.FontRegular, e.opts.FontSize)

	baseline := top + l.RowHeight - e.textOffset()
	for j, s := range cells {
		x, w := l.X(j), l.Width(j)
		c.Rect(x, top, w, l.RowHeight, canvas.StyleFillDraw)
		if s == "" {
			continue
		}
		s = fitText(c, s, w-2*e.opts.Padding)
		if j == 0 {
			c.Text(x+e.opts.Padding, baseline, s)
		} else {
			c.Text(x+w-e.opts.Padding-c.StringWidth(s), baseline, s)
		}
	}
}

func (e *Engine) textOffset() float64 {
	return (e.opts.RowHeight - e.opts.FontSize) / 2
}

func fitText(c canvas.Canvas, s string, width float64) string {
	if c.StringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && c.StringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	if len(runes) == 0 {
		return ""
	}
	return string(runes) + "..."
}

// FormatCell renders whole numbers without decimals and everything else with two.
func FormatCell(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
