package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"sync/atomic"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/render/canvas"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// MinLogoSize is the size below which a logo file is treated as a placeholder.
const MinLogoSize = 64

var errPlaceholder = errors.New("placeholder file")

// Image is a decoded raster asset ready to be placed on a canvas.
type Image struct {
	Name   string
	Type   string
	Data   []byte
	Width  int
	Height int
}

// AspectRatio is width over height.
func (i *Image) AspectRatio() float64 {
	if i.Height == 0 {
		return 1
	}
	return float64(i.Width) / float64(i.Height)
}

// Logo lazily loads the brand logo at most once and hands it out to documents being rendered.
// A missing or unreadable file yields no logo.
type Logo struct {
	fs   afero.Fs
	path string

	mu     sync.Mutex
	loaded atomic.Bool
	image  *Image
	loads  atomic.Int64
	refs   atomic.Int64
}

func NewLogo(fs afero.Fs, path string) *Logo {
	return &Logo{fs: fs, path: path}
}

// Acquire returns the logo, or nil when there is none, and a release func that must be called
// once the document using it is finished.
func (l *Logo) Acquire(ctx context.Context) (*Image, func()) {
	if l == nil {
		return nil, func() {}
	}

	if !l.loaded.Load() {
		l.mu.Lock()
		if !l.loaded.Load() {
			l.image = l.load(ctx)
			l.loads.Add(1)
			l.loaded.Store(true)
		}
		l.mu.Unlock()
	}

	l.refs.Add(1)
	var once sync.Once
	return l.image, func() {
		once.Do(func() { l.refs.Add(-1) })
	}
}

// Refs is the number of documents currently holding the logo.
func (l *Logo) Refs() int64 {
	return l.refs.Load()
}

// Loads is the number of times the file was read.
func (l *Logo) Loads() int64 {
	return l.loads.Load()
}

// Reset drops the loaded logo so the next Acquire reads the file again.
func (l *Logo) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.image = nil
	l.loaded.Store(false)
	l.loads.Store(0)
}

func (l *Logo) load(ctx context.Context) *Image {
	logger := zerolog.Ctx(ctx)
	if l.path == "" || l.fs == nil {
		return nil
	}

	img, err := l.read()
	if err != nil {
		logger.Debug().Err(&domain.AssetLoadError{Path: l.path, Err: err}).Msg("rendering without logo")
		return nil
	}

	logger.Debug().Str("path", l.path).Int("width", img.Width).Int("height", img.Height).Msg("logo loaded")
	return img
}

func (l *Logo) read() (*Image, error) {
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		return nil, err
	}
	if len(data) < MinLogoSize {
		return nil, fmt.Errorf("%w: %d bytes", errPlaceholder, len(data))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	imageType := canvas.ImageTypePNG
	if format == "jpeg" {
		imageType = canvas.ImageTypeJPEG
	}
	return &Image{
		Name:   "logo",
		Type:   imageType,
		Data:   data,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
