package canvas

import (
	"fmt"
	"io"
)

const (
	a4LandscapeWidth  = 841.89
	a4LandscapeHeight = 595.28
)

type Op struct {
	Kind  string
	Page  int
	X, Y  float64
	W, H  float64
	Angle float64
	Text  string
	Style string
	Color Color
}

// Recorder is an in-memory Canvas that keeps every drawing operation. String widths are
// approximated as half the font size per rune.
type Recorder struct {
	Ops      []Op
	Width    float64
	Height   float64
	FailWith error

	page     int
	fontSize float64
	fill     Color
	text     Color
}

func NewRecorder() *Recorder {
	return &Recorder{Width: a4LandscapeWidth, Height: a4LandscapeHeight, fontSize: defaultFontSize}
}

func (r *Recorder) record(op Op) {
	op.Page = r.page
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) AddPage() {
	r.page++
	r.record(Op{Kind: "page"})
}

func (r *Recorder) PageNo() int {
	return r.page
}

func (r *Recorder) PageSize() (float64, float64) {
	return r.Width, r.Height
}

func (r *Recorder) SetFillColor(c Color) {
	r.fill = c
}

func (r *Recorder) SetDrawColor(Color) {}

func (r *Recorder) SetTextColor(c Color) {
	r.text = c
}

func (r *Recorder) SetLineWidth(float64) {}

func (r *Recorder) SetFont(_ string, size float64) {
	r.fontSize = size
}

func (r *Recorder) Rect(x, y, w, h float64, style string) {
	r.record(Op{Kind: "rect", X: x, Y: y, W: w, H: h, Style: style, Color: r.fill})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.record(Op{Kind: "line", X: x1, Y: y1, W: x2 - x1, H: y2 - y1})
}

func (r *Recorder) Polygon(points []Point, style string) {
	if len(points) == 0 {
		return
	}
	r.record(Op{Kind: "polygon", X: points[0].X, Y: points[0].Y, Style: style, W: float64(len(points))})
}

func (r *Recorder) Text(x, y float64, s string) {
	r.record(Op{Kind: "text", X: x, Y: y, Text: s, Color: r.text})
}

func (r *Recorder) RotatedText(x, y, angle float64, s string) {
	r.record(Op{Kind: "rotated", X: x, Y: y, Angle: angle, Text: s})
}

func (r *Recorder) Image(name, _ string, _ []byte, x, y, w, h float64) error {
	r.record(Op{Kind: "image", X: x, Y: y, W: w, H: h, Text: name})
	return nil
}

func (r *Recorder) StringWidth(s string) float64 {
	return float64(len([]rune(s))) * r.fontSize * 0.5
}

func (r *Recorder) Output(w io.Writer) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	_, err := fmt.Fprintf(w, "%%PDF-recorded pages=%d ops=%d", r.page, len(r.Ops))
	return err
}

// Texts returns the text drawn on the given page, rotated text included.
func (r *Recorder) Texts(page int) []string {
	var texts []string
	for _, op := range r.Ops {
		if op.Page == page && (op.Kind == "text" || op.Kind == "rotated") {
			texts = append(texts, op.Text)
		}
	}
	return texts
}

// Count returns the number of operations of the given kind on a page, or on all pages when page is 0.
func (r *Recorder) Count(kind string, page int) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind && (page == 0 || op.Page == page) {
			n++
		}
	}
	return n
}
