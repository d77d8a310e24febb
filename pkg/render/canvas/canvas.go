package canvas

import "io"

const (
	StyleFill       = "F"
	StyleDraw       = "D"
	StyleFillDraw   = "FD"
	FontRegular     = ""
	FontBold        = "B"
	ImageTypePNG    = "PNG"
	ImageTypeJPEG   = "JPG"
	defaultFamily   = "Helvetica"
	defaultFontSize = 9
)

type Color struct {
	R, G, B int
}

type Point struct {
	X, Y float64
}

// Canvas is the drawing surface documents are rendered on. Coordinates are points with the
// origin in the top left corner of the current page. Text is positioned by its baseline.
type Canvas interface {
	AddPage()
	PageNo() int
	PageSize() (width, height float64)

	SetFillColor(c Color)
	SetDrawColor(c Color)
	SetTextColor(c Color)
	SetLineWidth(width float64)
	SetFont(style string, size float64)

	Rect(x, y, w, h float64, style string)
	Line(x1, y1, x2, y2 float64)
	Polygon(points []Point, style string)
	Text(x, y float64, s string)
	// RotatedText draws s counter clockwise by angle degrees around its baseline origin.
	RotatedText(x, y, angle float64, s string)
	Image(name, imageType string, data []byte, x, y, w, h float64) error

	StringWidth(s string) float64
	Output(w io.Writer) error
}
