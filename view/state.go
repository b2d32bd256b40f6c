package view

import (
	"math"
	"sync"

	"github.com/eak1mov/go-tileview/grid"
	"github.com/eak1mov/go-tileview/tile"
)

const (
	MinZoom = 1.0
	MaxZoom = 5.0
)

// Snapshot is a copy of the mutable State fields for one render pass.
type Snapshot struct {
	SurfaceOffsetX, SurfaceOffsetY int
	CanvasOffsetX, CanvasOffsetY   int
	Range                          tile.Range
	Ready                          bool // Range is set
	Zoom                           float64
}

// State owns the scroll and zoom state of one viewport configuration.
// All methods are safe for concurrent use.
type State struct {
	cfg        Config
	tilesHoriz int
	tilesVert  int

	mu             sync.Mutex
	surfaceOffsetX int
	surfaceOffsetY int
	canvasOffsetX  int
	canvasOffsetY  int
	visibleRange   tile.Range
	hasRange       bool
	zoom           float64
	snapshot       *Snapshot
}

func NewState(cfg Config) (*State, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.GridBuffer = max(0, cfg.GridBuffer)
	return &State{
		cfg:        cfg,
		tilesHoriz: cfg.TilesHorizontal(),
		tilesVert:  cfg.TilesVertical(),
		zoom:       MinZoom,
	}, nil
}

func (s *State) Config() Config {
	return s.cfg
}

func (s *State) TilesHorizontal() int { return s.tilesHoriz }
func (s *State) TilesVertical() int   { return s.tilesVert }

// Snapshot copies the mutable fields into a snapshot reused across calls.
// The result is valid until the next call; only one goroutine may consume it.
func (s *State) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		s.snapshot = &Snapshot{}
	}
	*s.snapshot = Snapshot{
		SurfaceOffsetX: s.surfaceOffsetX,
		SurfaceOffsetY: s.surfaceOffsetY,
		CanvasOffsetX:  s.canvasOffsetX,
		CanvasOffsetY:  s.canvasOffsetY,
		Range:          s.visibleRange,
		Ready:          s.hasRange,
		Zoom:           s.zoom,
	}
	return s.snapshot
}

// VisibleRange returns the current tile range, or false before the first offset was applied.
func (s *State) VisibleRange() (tile.Range, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleRange, s.hasRange
}

func (s *State) Offset() (x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surfaceOffsetX, s.surfaceOffsetY
}

func (s *State) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// ApplyOffsetRelative moves the surface offset by (dx, dy) pixels.
func (s *State) ApplyOffsetRelative(dx, dy int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyOffset(s.surfaceOffsetX+dx, s.surfaceOffsetY+dy)
}

// ApplyOffset sets the surface offset and reports whether the visible tile range changed.
//
// Scroll limits are checked per axis against the strictly visible range (grid buffer
// excluded): an axis that would leave the limits keeps its previous offset and range
// while the other axis still moves. Limits are not checked for the first offset.
func (s *State) ApplyOffset(x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyOffset(x, y)
}

func (s *State) applyOffset(x, y int) bool {
	tw, buf := s.cfg.TileSize, s.cfg.GridBuffer
	left, right := grid.TileRangeForOffset(x, s.tilesHoriz, tw, buf)
	top, bottom := grid.TileRangeForOffset(y, s.tilesVert, tw, buf)

	if s.hasRange {
		b := int32(buf)
		if !s.cfg.Limits.horizontalOK(left+b, right-b) {
			left, right = s.visibleRange.Left, s.visibleRange.Right
			x = s.surfaceOffsetX
		}
		if !s.cfg.Limits.verticalOK(top+b, bottom-b) {
			top, bottom = s.visibleRange.Top, s.visibleRange.Bottom
			y = s.surfaceOffsetY
		}
	}

	newRange := tile.Range{Left: left, Top: top, Right: right, Bottom: bottom}
	changed := !s.hasRange || newRange != s.visibleRange
	s.visibleRange = newRange
	s.hasRange = true

	s.surfaceOffsetX, s.surfaceOffsetY = x, y
	s.canvasOffsetX = grid.CanvasOffset(x, tw, buf)
	s.canvasOffsetY = grid.CanvasOffset(y, tw, buf)

	return changed
}

// UpdateZoom multiplies the zoom factor by m and returns the result clamped to [MinZoom, MaxZoom].
func (s *State) UpdateZoom(m float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	z := s.zoom * m
	if math.IsNaN(z) {
		z = s.zoom
	}
	s.zoom = min(MaxZoom, max(MinZoom, z))
	return s.zoom
}
