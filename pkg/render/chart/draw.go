package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/render/canvas"
	"github.com/de-tools/report-atlas/pkg/render/page"
)

const (
	gridLines    = 5
	axisGutter   = 52.0
	titleHeight  = 24.0
	labelsHeight = 18.0
	legendSwatch = 8.0
)

var (
	colorTitle = canvas.Color{R: 44, G: 62, B: 80}
	colorMuted = canvas.Color{R: 127, G: 140, B: 141}
	colorGrid  = canvas.Color{R: 220, G: 220, B: 220}
	colorFrame = canvas.Color{R: 255, G: 255, B: 255}
)

type plot struct {
	left, top, right, bottom float64
	model                    *PlotModel
}

func (p plot) x(v float64) float64 {
	span := p.model.X.Max - p.model.X.Min
	return p.left + (v-p.model.X.Min)/span*(p.right-p.left)
}

func (p plot) y(a Axis, v float64) float64 {
	span := a.Max - a.Min
	y := p.bottom - (v-a.Min)/span*(p.bottom-p.top)
	return math.Max(p.top, math.Min(p.bottom, y))
}

// Draw renders the model inside area.
func Draw(c canvas.Canvas, m *PlotModel, area page.ContentArea) error {
	p := plot{
		left:   area.Left + axisGutter,
		top:    area.Top + titleHeight,
		right:  area.Right - axisGutter,
		bottom: area.Bottom - labelsHeight,
		model:  m,
	}
	if p.right <= p.left || p.bottom <= p.top {
		return &domain.RenderError{Stage: "chart", Err: fmt.Errorf("area %.1fx%.1f too small for a chart", area.Width(), area.Height())}
	}
	if m.X.Max <= m.X.Min || m.Left.Max <= m.Left.Min || m.Right.Max <= m.Right.Min {
		return &domain.RenderError{Stage: "chart", Err: errors.New("empty axis range")}
	}

	c.SetFillColor(colorFrame)
	c.SetDrawColor(colorGrid)
	c.SetLineWidth(0.5)
	c.Rect(p.left, p.top, p.right-p.left, p.bottom-p.top, canvas.StyleFillDraw)

	drawTitle(c, m, area)
	drawGrid(c, p)
	drawXLabels(c, p)

	switch m.Style {
	case StyleBar:
		drawBars(c, p)
	case StyleArea:
		for _, s := range m.Series {
			drawArea(c, p, s)
		}
		for _, s := range m.Series {
			drawLine(c, p, s)
		}
	default:
		for _, s := range m.Series {
			drawLine(c, p, s)
		}
	}
	return nil
}

func drawTitle(c canvas.Canvas, m *PlotModel, area page.ContentArea) {
	c.SetFont(canvas.FontBold, 11)
	c.SetTextColor(colorTitle)
	c.Text(area.Left, area.Top+12, m.Title)

	c.SetFont(canvas.FontRegular, 8)
	x := area.Right
	for i := len(m.Series) - 1; i >= 0; i-- {
		s := m.Series[i]
		x -= c.StringWidth(s.Title)
		c.SetTextColor(colorMuted)
		c.Text(x, area.Top+12, s.Title)
		x -= legendSwatch + 4
		c.SetFillColor(s.Color)
		c.Rect(x, area.Top+12-legendSwatch+1, legendSwatch, legendSwatch, canvas.StyleFill)
		x -= 12
	}
}

func drawGrid(c canvas.Canvas, p plot) {
	m := p.model
	c.SetFont(canvas.FontRegular, 7)
	c.SetTextColor(colorMuted)
	for i := 0; i <= gridLines; i++ {
		share := float64(i) / gridLines
		gy := p.bottom - share*(p.bottom-p.top)

		c.SetDrawColor(colorGrid)
		c.SetLineWidth(0.3)
		c.Line(p.left, gy, p.right, gy)

		left := FormatValue(m.Left.Min + share*(m.Left.Max-m.Left.Min))
		c.Text(p.left-4-c.StringWidth(left), gy+2.5, left)
		right := FormatValue(m.Right.Min + share*(m.Right.Max-m.Right.Min))
		c.Text(p.right+4, gy+2.5, right)
	}

	mid := (p.top + p.bottom) / 2
	c.SetFont(canvas.FontBold, 8)
	c.RotatedText(p.left-axisGutter+10, mid+c.StringWidth(m.Left.Title)/2, 90, m.Left.Title)
	c.RotatedText(p.right+axisGutter-4, mid+c.StringWidth(m.Right.Title)/2, 90, m.Right.Title)
}

func drawXLabels(c canvas.Canvas, p plot) {
	labels := p.model.X.Labels
	if len(labels) == 0 {
		return
	}
	c.SetFont(canvas.FontRegular, 7)
	c.SetTextColor(colorMuted)

	widest := 0.0
	for _, l := range labels {
		widest = math.Max(widest, c.StringWidth(l))
	}
	slot := (p.right - p.left) / float64(len(labels))
	step := int(math.Ceil((widest + 6) / slot))
	if step < 1 {
		step = 1
	}

	for i := 0; i < len(labels); i += step {
		x := p.x(float64(i))
		c.Text(x-c.StringWidth(labels[i])/2, p.bottom+10, labels[i])
	}
}

func drawLine(c canvas.Canvas, p plot, s Series) {
	axis := p.model.axis(s.Axis)
	c.SetDrawColor(s.Color)
	c.SetFillColor(s.Color)
	c.SetLineWidth(1.2)
	for i, v := range s.Values {
		x, y := p.x(float64(i)), p.y(axis, v)
		if i > 0 {
			c.Line(p.x(float64(i-1)), p.y(axis, s.Values[i-1]), x, y)
		}
		c.Rect(x-1.5, y-1.5, 3, 3, canvas.StyleFill)
	}
}

func drawArea(c canvas.Canvas, p plot, s Series) {
	if len(s.Values) < 2 {
		return
	}
	axis := p.model.axis(s.Axis)
	base := p.y(axis, math.Max(axis.Min, 0))

	points := make([]canvas.Point, 0, len(s.Values)+2)
	points = append(points, canvas.Point{X: p.x(0), Y: base})
	for i, v := range s.Values {
		points = append(points, canvas.Point{X: p.x(float64(i)), Y: p.y(axis, v)})
	}
	points = append(points, canvas.Point{X: p.x(float64(len(s.Values) - 1)), Y: base})

	c.SetFillColor(tint(s.Color, 0.7))
	c.Polygon(points, canvas.StyleFill)
}

func drawBars(c canvas.Canvas, p plot) {
	m := p.model
	for _, b := range m.Bars {
		s := m.Series[b.Series]
		axis := m.axis(s.Axis)
		zero := p.y(axis, math.Max(axis.Min, 0))
		top := p.y(axis, b.Value)

		c.SetFillColor(s.Color)
		c.Rect(p.x(b.X0), math.Min(zero, top), p.x(b.X1)-p.x(b.X0), math.Abs(zero-top), canvas.StyleFill)
	}
}

func tint(c canvas.Color, f float64) canvas.Color {
	mix := func(v int) int {
		return v + int(float64(255-v)*f)
	}
	return canvas.Color{R: mix(c.R), G: mix(c.G), B: mix(c.B)}
}

// FormatValue renders an axis value compactly, e.g. 1.2M or 12.5k.
func FormatValue(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	case abs >= 10 || v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}
