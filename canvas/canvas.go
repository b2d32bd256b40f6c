// Package canvas implements an in-memory, double buffered drawing surface
// for the render loop.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/eak1mov/go-tileview/render"
	"github.com/eak1mov/go-tileview/tile"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	ErrLocked     = errors.New("tileview: surface already locked")
	ErrNotLocked  = errors.New("tileview: surface not locked")
	ErrEmptyImage = errors.New("tileview: empty tile image")
)

var (
	outlineColor = color.RGBA{R: 0xff, G: 0x00, B: 0x80, A: 0xff}
	labelColor   = color.RGBA{R: 0xff, G: 0x00, B: 0x80, A: 0xff}
	statusColor  = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xc0}
	statusText   = color.White
)

const lineHeight = 14

type config struct {
	Background color.Color
	Scaler     draw.Scaler
	Logger     *slog.Logger
}

type Option func(*config)

func WithBackground(c color.Color) Option {
	return func(cfg *config) { cfg.Background = c }
}

// WithScaler sets the interpolator for tiles whose image size differs from the tile size.
func WithScaler(s draw.Scaler) Option {
	return func(cfg *config) { cfg.Scaler = s }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) { cfg.Logger = logger }
}

// Surface is a render.Surface over two RGBA images. Drawing goes to the back
// buffer; Unlock swaps it with the front buffer.
type Surface struct {
	background *image.Uniform
	scaler     draw.Scaler
	logger     *slog.Logger

	mu     sync.Mutex
	front  *image.RGBA
	back   *image.RGBA
	locked *Canvas
	frames int
}

var _ render.Surface = (*Surface)(nil)

func New(width, height int, opts ...Option) *Surface {
	cfg := config{
		Background: color.Gray{Y: 0xee},
		Scaler:     draw.ApproxBiLinear,
		Logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Surface{
		background: image.NewUniform(cfg.Background),
		scaler:     cfg.Scaler,
		logger:     cfg.Logger,
		front:      image.NewRGBA(image.Rect(0, 0, width, height)),
		back:       image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	draw.Draw(s.front, s.front.Bounds(), s.background, image.Point{}, draw.Src)
	return s
}

func (s *Surface) Bounds() image.Rectangle {
	return s.front.Bounds()
}

func (s *Surface) Lock() (render.Canvas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked != nil {
		return nil, ErrLocked
	}
	s.locked = &Canvas{surface: s, dst: s.back}
	return s.locked, nil
}

// Unlock presents the canvas returned by the last Lock.
func (s *Surface) Unlock(c render.Canvas) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked == nil {
		return ErrNotLocked
	}
	if c != render.Canvas(s.locked) {
		return fmt.Errorf("%w: foreign canvas %T", ErrNotLocked, c)
	}
	s.locked.dst = nil
	s.locked = nil
	s.front, s.back = s.back, s.front
	s.frames++
	s.logger.Debug("tileview: frame presented", "frame", s.frames)
	return nil
}

// Frames returns the number of presented frames.
func (s *Surface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Snapshot returns a copy of the last presented frame.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	img := image.NewRGBA(s.front.Bounds())
	copy(img.Pix, s.front.Pix)
	return img
}

// Canvas draws into the back buffer of a locked Surface. It must not be used after Unlock.
type Canvas struct {
	surface *Surface
	dst     *image.RGBA
}

var _ render.DebugCanvas = (*Canvas)(nil)

func (c *Canvas) Clear() {
	draw.Draw(c.dst, c.dst.Bounds(), c.surface.background, image.Point{}, draw.Src)
}

func (c *Canvas) DrawTile(t *tile.Tile, left, top, size int) error {
	if t == nil || t.Image == nil {
		return nil
	}
	sr := t.Image.Bounds()
	if sr.Empty() {
		return fmt.Errorf("%w: %v", ErrEmptyImage, t.ID)
	}

	dr := image.Rect(left, top, left+size, top+size)
	if sr.Dx() == size && sr.Dy() == size {
		draw.Draw(c.dst, dr, t.Image, sr.Min, draw.Over)
		return nil
	}
	c.surface.scaler.Scale(c.dst, dr, t.Image, sr, draw.Over, nil)
	return nil
}

func (c *Canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.dst, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *Canvas) text(x, y int, col color.Color, s string) {
	d := &font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func (c *Canvas) DrawTileOutline(id tile.ID, left, top, size int) {
	right, bottom := left+size, top+size
	c.fill(image.Rect(left, top, right, top+1), outlineColor)
	c.fill(image.Rect(left, bottom-1, right, bottom), outlineColor)
	c.fill(image.Rect(left, top, left+1, bottom), outlineColor)
	c.fill(image.Rect(right-1, top, right, bottom), outlineColor)
	c.text(left+4, top+lineHeight, labelColor, id.String())
}

func (c *Canvas) DrawStatus(lines []string) {
	if len(lines) == 0 {
		return
	}
	meas := &font.Drawer{Face: basicfont.Face7x13}
	width := 0
	for _, line := range lines {
		width = max(width, meas.MeasureString(line).Ceil())
	}

	c.fill(image.Rect(0, 0, width+8, len(lines)*lineHeight+6), statusColor)
	for i, line := range lines {
		c.text(4, (i+1)*lineHeight, statusText, line)
	}
}
