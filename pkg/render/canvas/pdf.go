package canvas

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// PDF is a Canvas writing an A4 landscape document measured in points.
type PDF struct {
	pdf    *fpdf.Fpdf
	images map[string]bool
	// tr maps UTF-8 text to the cp1252 encoding of the core fonts.
	tr func(string) string
}

func NewPDF(title string, created time.Time) *PDF {
	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("report-atlas", true)
	pdf.SetCreationDate(created)
	pdf.SetFont(defaultFamily, FontRegular, defaultFontSize)
	return &PDF{
		pdf:    pdf,
		images: make(map[string]bool),
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (p *PDF) AddPage() {
	p.pdf.AddPage()
}

func (p *PDF) PageNo() int {
	return p.pdf.PageNo()
}

func (p *PDF) PageSize() (float64, float64) {
	return p.pdf.GetPageSize()
}

func (p *PDF) SetFillColor(c Color) {
	p.pdf.SetFillColor(c.R, c.G, c.B)
}

func (p *PDF) SetDrawColor(c Color) {
	p.pdf.SetDrawColor(c.R, c.G, c.B)
}

func (p *PDF) SetTextColor(c Color) {
	p.pdf.SetTextColor(c.R, c.G, c.B)
}

func (p *PDF) SetLineWidth(width float64) {
	p.pdf.SetLineWidth(width)
}

func (p *PDF) SetFont(style string, size float64) {
	p.pdf.SetFont(defaultFamily, style, size)
}

func (p *PDF) Rect(x, y, w, h float64, style string) {
	p.pdf.Rect(x, y, w, h, style)
}

func (p *PDF) Line(x1, y1, x2, y2 float64) {
	p.pdf.Line(x1, y1, x2, y2)
}

func (p *PDF) Polygon(points []Point, style string) {
	pts := make([]fpdf.PointType, len(points))
	for i, pt := range points {
		pts[i] = fpdf.PointType{X: pt.X, Y: pt.Y}
	}
	p.pdf.Polygon(pts, style)
}

func (p *PDF) Text(x, y float64, s string) {
	p.pdf.Text(x, y, p.tr(s))
}

func (p *PDF) RotatedText(x, y, angle float64, s string) {
	p.pdf.TransformBegin()
	p.pdf.TransformRotate(angle, x, y)
	p.pdf.Text(x, y, p.tr(s))
	p.pdf.TransformEnd()
}

func (p *PDF) Image(name, imageType string, data []byte, x, y, w, h float64) error {
	opts := fpdf.ImageOptions{ImageType: imageType}
	if !p.images[name] {
		info := p.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if info == nil || p.pdf.Err() {
			err := p.pdf.Error()
			p.pdf.ClearError()
			return fmt.Errorf("register image %s: %w", name, err)
		}
		p.images[name] = true
	}
	p.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

func (p *PDF) StringWidth(s string) float64 {
	return p.pdf.GetStringWidth(p.tr(s))
}

func (p *PDF) Output(w io.Writer) error {
	if err := p.pdf.Output(w); err != nil {
		return fmt.Errorf("PDF output error: %w", err)
	}
	return nil
}
