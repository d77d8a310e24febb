package chart

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/render/canvas"
)

type Style string

const (
	StyleArea Style = "area"
	StyleLine Style = "line"
	StyleBar  Style = "bar"
)

const (
	// BarHalfWidth is the distance from an index to the outer edge of its bar group.
	BarHalfWidth = 0.4
	// BarGap separates the bars of the two metrics at one index.
	BarGap = 0.06
	// Headroom scales the axis maximum of bar charts above the largest value.
	Headroom = 1.15
)

var (
	ColorCount  = canvas.Color{R: 52, G: 152, B: 219}
	ColorAmount = canvas.Color{R: 46, G: 204, B: 113}
)

// ParseStyle returns the style named by s, or fallback when s is empty or unknown.
func ParseStyle(s string, fallback Style) Style {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleArea:
		return StyleArea
	case StyleLine:
		return StyleLine
	case StyleBar:
		return StyleBar
	default:
		return fallback
	}
}

// FormatPeriod turns a compact period code into a label: 202601 is "Jan 2026", 20260203 is "2026-02-03".
func FormatPeriod(code string) (string, error) {
	switch len(code) {
	case 6:
		t, err := time.Parse("200601", code)
		if err != nil {
			return "", fmt.Errorf("malformed month code %q: %w", code, err)
		}
		return t.Format("Jan 2006"), nil
	case 8:
		t, err := time.Parse("20060102", code)
		if err != nil {
			return "", fmt.Errorf("malformed day code %q: %w", code, err)
		}
		return t.Format("2006-01-02"), nil
	default:
		return "", fmt.Errorf("unsupported period code %q", code)
	}
}

type AxisPosition int

const (
	AxisBottom AxisPosition = iota
	AxisLeft
	AxisRight
)

type Axis struct {
	Position AxisPosition
	Title    string
	Min, Max float64
	// Numeric axes place values by position rather than by category. Labels are then drawn at
	// integer positions.
	Numeric bool
	Labels  []string
}

type Series struct {
	Title  string
	Axis   AxisPosition
	Values []float64
	Color  canvas.Color
}

// BarRect is a bar in data coordinates spanning X0..X1 from zero to Value.
type BarRect struct {
	Series int
	X0, X1 float64
	Value  float64
}

// PlotModel is a renderer independent description of a dual axis chart.
type PlotModel struct {
	Title  string
	Style  Style
	X      Axis
	Left   Axis
	Right  Axis
	Series []Series
	Bars   []BarRect
}

func (m *PlotModel) axis(pos AxisPosition) Axis {
	if pos == AxisRight {
		return m.Right
	}
	return m.Left
}

// Build turns a period series into a plot with the count on the left axis and the amount on the right.
func Build(points []domain.SeriesPoint, style Style, title string) (*PlotModel, error) {
	if len(points) == 0 {
		return nil, &domain.RenderError{Stage: "chart", Err: errors.New("series has no points")}
	}

	labels := make([]string, len(points))
	counts := make([]float64, len(points))
	amounts := make([]float64, len(points))
	for i, p := range points {
		label, err := FormatPeriod(p.Period)
		if err != nil {
			return nil, &domain.RenderError{Stage: "chart", Err: err}
		}
		labels[i] = label
		counts[i] = float64(p.Count)
		amounts[i] = p.Amount
	}

	n := float64(len(points))
	m := &PlotModel{
		Title: title,
		Style: style,
		X: Axis{
			Position: AxisBottom,
			Min:      -0.5,
			Max:      n - 0.5,
			Numeric:  style == StyleBar,
			Labels:   labels,
		},
		Left:  Axis{Position: AxisLeft, Title: "Count"},
		Right: Axis{Position: AxisRight, Title: "Amount"},
		Series: []Series{
			{Title: "Count", Axis: AxisLeft, Values: counts, Color: ColorCount},
			{Title: "Amount", Axis: AxisRight, Values: amounts, Color: ColorAmount},
		},
	}

	if style == StyleBar {
		m.Left.Min, m.Left.Max = barRange(counts)
		m.Right.Min, m.Right.Max = barRange(amounts)
		m.Bars = bars(counts, amounts)
	} else {
		m.Left.Min, m.Left.Max = niceRange(counts)
		m.Right.Min, m.Right.Max = niceRange(amounts)
	}
	return m, nil
}

// bars places the count bar left of each index and the amount bar right of it.
func bars(counts, amounts []float64) []BarRect {
	rects := make([]BarRect, 0, 2*len(counts))
	for i := range counts {
		x := float64(i)
		rects = append(rects,
			BarRect{Series: 0, X0: x - BarHalfWidth, X1: x - BarGap/2, Value: counts[i]},
			BarRect{Series: 1, X0: x + BarGap/2, X1: x + BarHalfWidth, Value: amounts[i]},
		)
	}
	return rects
}

// barRange derives the axis range from the data. Bars are drawn as rectangles and do not take
// part in auto ranging.
func barRange(values []float64) (float64, float64) {
	lo, hi := bounds(values)
	axisMax := hi * Headroom
	if hi <= 0 {
		axisMax = 1
	}
	axisMin := 0.0
	if lo < 0 {
		axisMin = lo * Headroom
	}
	return axisMin, axisMax
}

func niceRange(values []float64) (float64, float64) {
	lo, hi := bounds(values)
	axisMax := 1.0
	if hi > 0 {
		axisMax = niceCeil(hi)
	}
	axisMin := 0.0
	if lo < 0 {
		axisMin = -niceCeil(-lo)
	}
	return axisMin, axisMax
}

func bounds(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func niceCeil(v float64) float64 {
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, f := range []float64{1, 2, 2.5, 5, 10} {
		if f*exp >= v {
			return f * exp
		}
	}
	return 10 * exp
}
