package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPDF_Output(t *testing.T) {
	c := NewPDF("Traffic", time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC))
	c.AddPage()

	width, height := c.PageSize()
	assert.Greater(t, width, height)
	assert.Equal(t, 1, c.PageNo())

	c.SetFillColor(Color{R: 30, G: 58, B: 95})
	c.Rect(0, 0, width, 40, StyleFill)
	c.Line(10, 50, 100, 50)
	c.Polygon([]Point{{10, 60}, {50, 60}, {30, 90}}, StyleFillDraw)
	c.SetFont(FontBold, 12)
	c.Text(20, 30, "Traffic")
	c.RotatedText(120, 200, 90, "2026-01-26")
	require.NoError(t, c.Image("logo", ImageTypePNG, pngBytes(t), 10, 10, 20, 20))
	require.NoError(t, c.Image("logo", ImageTypePNG, nil, 10, 100, 20, 20))
	assert.Greater(t, c.StringWidth("Traffic"), 0.0)

	var buf bytes.Buffer
	require.NoError(t, c.Output(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDF_ImageDecodeFailure(t *testing.T) {
	c := NewPDF("Traffic", time.Now())
	c.AddPage()

	err := c.Image("broken", ImageTypePNG, []byte("not an image"), 0, 0, 10, 10)
	assert.Error(t, err)

	var buf bytes.Buffer
	assert.NoError(t, c.Output(&buf))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.AddPage()
	r.SetFont(FontRegular, 10)
	r.Text(1, 2, "abc")
	r.RotatedText(1, 2, 90, "def")
	r.AddPage()
	r.Rect(0, 0, 1, 1, StyleDraw)

	assert.Equal(t, []string{"abc", "def"}, r.Texts(1))
	assert.Equal(t, 15.0, r.StringWidth("abc"))
	assert.Equal(t, 1, r.Count("rect", 2))
	assert.Equal(t, 2, r.Count("page", 0))
}

func TestPDF_AccentedText(t *testing.T) {
	c := NewPDF("Traffic", time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC))
	c.pdf.SetCompression(false)
	c.AddPage()
	c.SetFont(FontRegular, 10)

	assert.InDelta(t, c.StringWidth("Telecom"), c.StringWidth("Télécom"), 1e-9)

	c.Text(20, 30, "Télécom")
	c.RotatedText(120, 200, 90, "Zürich")
	var buf bytes.Buffer
	require.NoError(t, c.Output(&buf))

	out := buf.Bytes()
	assert.True(t, bytes.Contains(out, []byte("T\xe9l\xe9com")))
	assert.True(t, bytes.Contains(out, []byte("Z\xfcrich")))
	assert.False(t, bytes.Contains(out, []byte("T\xc3\xa9l")))
}
