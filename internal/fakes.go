// Package internal provides test doubles shared by package tests.
package internal

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/eak1mov/go-tileview/grid"
	"github.com/eak1mov/go-tileview/render"
	"github.com/eak1mov/go-tileview/tile"
)

// Supplier is an in-memory tile supplier that records notifications.
type Supplier struct {
	Size   int
	Anchor grid.Anchor
	Limits []*int32
	Buffer int

	fresh atomic.Bool

	mu       sync.Mutex
	tiles    map[tile.ID]*tile.Tile
	ranges   []tile.Range
	zooms    []float64
	tornDown int
}

func NewSupplier(size int) *Supplier {
	return &Supplier{Size: size, tiles: make(map[tile.ID]*tile.Tile)}
}

// Set stores new content for id and raises the fresh data flag.
func (s *Supplier) Set(id tile.ID, img image.Image) *tile.Tile {
	t := tile.New(id, img)
	s.mu.Lock()
	s.tiles[id] = t
	s.mu.Unlock()
	s.fresh.Store(true)
	return t
}

func (s *Supplier) Remove(id tile.ID) {
	s.mu.Lock()
	delete(s.tiles, id)
	s.mu.Unlock()
	s.fresh.Store(true)
}

// MarkFresh raises the fresh data flag without changing content.
func (s *Supplier) MarkFresh() { s.fresh.Store(true) }

func (s *Supplier) TileSize() int           { return s.Size }
func (s *Supplier) GridAnchor() grid.Anchor { return s.Anchor }
func (s *Supplier) ScrollLimits() []*int32  { return s.Limits }
func (s *Supplier) GridBuffer() int         { return s.Buffer }

func (s *Supplier) Tile(x, y int32) *tile.Tile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tiles[tile.ID{X: x, Y: y}]
}

func (s *Supplier) HasFreshData() bool { return s.fresh.Swap(false) }

func (s *Supplier) NotifyRangeChanged(r tile.Range) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges = append(s.ranges, r)
}

func (s *Supplier) NotifyZoomChanged(zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zooms = append(s.zooms, zoom)
}

func (s *Supplier) NotifySurfaceTornDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tornDown++
}

func (s *Supplier) DebugSummary() string { return "fake" }

func (s *Supplier) Ranges() []tile.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tile.Range(nil), s.ranges...)
}

func (s *Supplier) Zooms() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.zooms...)
}

func (s *Supplier) TornDown() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tornDown
}

// Solid returns a small uniformly colored image.
func Solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, c)
		}
	}
	return img
}

var ErrInjected = errors.New("injected failure")

// DrawCall records one DrawTile or DrawTileOutline call.
type DrawCall struct {
	ID   tile.ID
	Left int
	Top  int
	Size int
}

// Surface records lock, draw and unlock calls.
type Surface struct {
	LockErr   error
	DrawErr   error
	DrawPanic bool

	mu       sync.Mutex
	locked   bool
	locks    int
	unlocks  int
	clears   int
	draws    []DrawCall
	outlines []DrawCall
	status   []string
}

func (s *Surface) Lock() (render.Canvas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LockErr != nil {
		return nil, s.LockErr
	}
	if s.locked {
		panic("surface locked twice")
	}
	s.locked = true
	s.locks++
	s.draws = s.draws[:0]
	s.outlines = s.outlines[:0]
	s.status = nil
	return (*surfaceCanvas)(s), nil
}

func (s *Surface) Unlock(c render.Canvas) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.locked || c != render.Canvas((*surfaceCanvas)(s)) {
		panic("unlock without lock")
	}
	s.locked = false
	s.unlocks++
	return nil
}

// Locked reports whether the surface is currently locked.
func (s *Surface) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Frames returns the number of completed lock/unlock pairs.
func (s *Surface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocks
}

func (s *Surface) Locks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locks
}

// Draws returns the DrawTile calls of the last frame.
func (s *Surface) Draws() []DrawCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DrawCall(nil), s.draws...)
}

// Outlines returns the DrawTileOutline calls of the last frame.
func (s *Surface) Outlines() []DrawCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DrawCall(nil), s.outlines...)
}

// Status returns the DrawStatus lines of the last frame.
func (s *Surface) Status() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.status...)
}

type surfaceCanvas Surface

func (c *surfaceCanvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clears++
}

func (c *surfaceCanvas) DrawTile(t *tile.Tile, left, top, size int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DrawPanic {
		panic("injected panic")
	}
	if c.DrawErr != nil {
		return c.DrawErr
	}
	c.draws = append(c.draws, DrawCall{ID: t.ID, Left: left, Top: top, Size: size})
	return nil
}

func (c *surfaceCanvas) DrawTileOutline(id tile.ID, left, top, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outlines = append(c.outlines, DrawCall{ID: id, Left: left, Top: top, Size: size})
}

func (c *surfaceCanvas) DrawStatus(lines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = append([]string(nil), lines...)
}
