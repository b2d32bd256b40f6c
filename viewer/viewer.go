// Package viewer wires the view state, the render loop and the gesture
// translator of a tile grid viewport to a tile supplier.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eak1mov/go-tileview/gesture"
	"github.com/eak1mov/go-tileview/grid"
	"github.com/eak1mov/go-tileview/render"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/eak1mov/go-tileview/view"
)

var (
	ErrInvalidTileSize = errors.New("tileview: invalid tile size")
	ErrNotConfigured   = errors.New("tileview: viewer not configured")
)

// Supplier provides tile content and configuration to a Viewer.
//
// Tile and HasFreshData are called from the render goroutine at frame rate and
// must be fast and safe for concurrent use. The notifications are called from
// the goroutine driving the Viewer.
type Supplier interface {
	// TileSize returns the tile side length in pixels.
	TileSize() int

	// GridAnchor returns where MoveToTile pins the target tile.
	GridAnchor() grid.Anchor

	// ScrollLimits returns (left, top, right, bottom) tile ID limits, each optional.
	// nil means unbounded; a slice of any other length than 4 is ignored.
	ScrollLimits() []*int32

	// GridBuffer returns the number of extra tiles fetched on every side.
	GridBuffer() int

	Tile(x, y int32) *tile.Tile
	HasFreshData() bool

	NotifyRangeChanged(r tile.Range)
	NotifyZoomChanged(zoom float64)
	NotifySurfaceTornDown()
}

type config struct {
	Logger        *slog.Logger
	FrameInterval time.Duration
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.Logger = logger }
}

// WithFrameInterval sets the pause between two iterations of the render loop.
func WithFrameInterval(d time.Duration) Option {
	return func(c *config) { c.FrameInterval = d }
}

// Viewer is a scrollable, zoomable view over the tiles of a Supplier.
type Viewer struct {
	supplier  Supplier
	logger    *slog.Logger
	state     atomic.Pointer[view.State]
	scheduler *render.Scheduler
	gestures  gesture.Translator

	mu      sync.Mutex
	started bool
}

func New(supplier Supplier, surface render.Surface, opts ...Option) *Viewer {
	cfg := config{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	v := &Viewer{
		supplier: supplier,
		logger:   cfg.Logger,
	}
	v.scheduler = render.NewScheduler(v, supplier, surface,
		render.WithLogger(cfg.Logger),
		render.WithFrameInterval(cfg.FrameInterval),
	)
	v.gestures = gesture.Translator{
		States:   v,
		Notifier: supplier,
		Rerender: v.scheduler.RequestRerender,
	}
	return v
}

// State returns the view state of the current configuration, or nil before Configure.
func (v *Viewer) State() *view.State {
	return v.state.Load()
}

// Configure (re)creates the view state for a surface of the given size and
// moves to tile (0, 0). Malformed scroll limits are ignored.
func (v *Viewer) Configure(width, height int) error {
	tileSize := v.supplier.TileSize()
	if tileSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTileSize, tileSize)
	}

	limits, err := view.ParseLimits(v.supplier.ScrollLimits())
	if err != nil {
		v.logger.Warn("tileview: ignoring scroll limits", "error", err)
		limits = view.Limits{}
	}

	state, err := view.NewState(view.Config{
		Width:      width,
		Height:     height,
		TileSize:   tileSize,
		Limits:     limits,
		GridBuffer: v.supplier.GridBuffer(),
	})
	if err != nil {
		return err
	}
	v.state.Store(state)
	v.logger.Debug("tileview: configured",
		"width", width, "height", height, "tileSize", tileSize,
		"tiles", fmt.Sprintf("%dx%d", state.TilesHorizontal(), state.TilesVertical()))

	v.MoveToTile(0, 0, true)
	v.scheduler.RequestRerender()
	return nil
}

// IsReady reports whether the viewport is configured and positioned.
func (v *Viewer) IsReady() bool {
	st := v.State()
	if st == nil {
		return false
	}
	_, ok := st.VisibleRange()
	return ok
}

// MoveToTile scrolls so that tile (x, y) is drawn at the supplier's grid anchor.
// The supplier is notified if the visible range changed, or always if alwaysNotify is set.
func (v *Viewer) MoveToTile(x, y int32, alwaysNotify bool) {
	st := v.State()
	if st == nil {
		v.logger.Debug("tileview: surface not ready, cannot go to tile", "x", x, "y", y)
		return
	}

	cfg := st.Config()
	anchorX, anchorY := v.supplier.GridAnchor().Position(cfg.Width, cfg.Height, cfg.TileSize)
	offsetX := anchorX - cfg.TileSize*int(x)
	offsetY := anchorY - cfg.TileSize*int(y)

	if st.ApplyOffset(offsetX, offsetY) || alwaysNotify {
		if r, ok := st.VisibleRange(); ok {
			v.supplier.NotifyRangeChanged(r)
		}
	}
}

// Scroll applies a drag distance (previous minus current pointer position).
func (v *Viewer) Scroll(dx, dy float64) {
	v.gestures.Drag(dx, dy)
}

// Zoom multiplies the zoom factor and returns the clamped result.
func (v *Viewer) Zoom(factor float64) float64 {
	return v.gestures.Pinch(factor)
}

// CurrentZoom returns the zoom factor, 1 before Configure.
func (v *Viewer) CurrentZoom() float64 {
	st := v.State()
	if st == nil {
		return view.MinZoom
	}
	return st.Zoom()
}

func (v *Viewer) SetDebug(enabled bool) {
	v.scheduler.SetDebug(enabled)
}

func (v *Viewer) RequestRerender() {
	v.scheduler.RequestRerender()
}

// Frame runs one iteration of the render loop on the calling goroutine.
func (v *Viewer) Frame() (bool, error) {
	return v.scheduler.Frame()
}

// Start runs the render loop in the background.
func (v *Viewer) Start(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.State() == nil {
		return ErrNotConfigured
	}
	if err := v.scheduler.Start(ctx); err != nil {
		return err
	}
	v.started = true
	return nil
}

// Stop waits for the render loop to exit and tells the supplier the surface is gone.
// It is safe to call Stop more than once; the supplier is notified once per Start.
func (v *Viewer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.started {
		return
	}
	v.scheduler.Stop()
	v.started = false
	v.supplier.NotifySurfaceTornDown()
	v.logger.Debug("tileview: surface torn down")
}
