package page

import "github.com/de-tools/report-atlas/pkg/render/canvas"

const (
	Margin            = 28.0
	CoverHeaderHeight = 72.0
	TitleBarHeight    = 30.0
	SlimHeaderHeight  = 30.0
	FooterHeight      = 30.0
	contentGap        = 12.0
)

var (
	ColorBackground = canvas.Color{R: 255, G: 255, B: 255}
	ColorHeader     = canvas.Color{R: 30, G: 58, B: 95}
	ColorTitleBar   = canvas.Color{R: 52, G: 152, B: 219}
	ColorTextLight  = canvas.Color{R: 255, G: 255, B: 255}
	ColorTextDark   = canvas.Color{R: 44, G: 62, B: 80}
	ColorTextMuted  = canvas.Color{R: 127, G: 140, B: 141}
	ColorGridLine   = canvas.Color{R: 220, G: 220, B: 220}
)

// ContentArea is the writable rectangle of a page.
type ContentArea struct {
	Left, Top, Right, Bottom float64
}

func (a ContentArea) Width() float64 {
	return a.Right - a.Left
}

func (a ContentArea) Height() float64 {
	return a.Bottom - a.Top
}

func (a ContentArea) Valid() bool {
	return a.Width() > 0 && a.Height() > 0
}

// Split cuts the area horizontally at the given share of its height, leaving gap between the parts.
func (a ContentArea) Split(share, gap float64) (ContentArea, ContentArea) {
	cut := a.Top + a.Height()*share
	top := ContentArea{Left: a.Left, Top: a.Top, Right: a.Right, Bottom: cut}
	bottom := ContentArea{Left: a.Left, Top: cut + gap, Right: a.Right, Bottom: a.Bottom}
	return top, bottom
}

// ContentAreaFor computes the writable rectangle of a page with the given size.
func ContentAreaFor(width, height float64, cover bool) ContentArea {
	top := SlimHeaderHeight + contentGap
	if cover {
		top = CoverHeaderHeight + TitleBarHeight + contentGap
	}
	return ContentArea{
		Left:   Margin,
		Top:    top,
		Right:  width - Margin,
		Bottom: height - FooterHeight,
	}
}
