// Package render runs the render loop of a tile grid viewport.
//
// The loop takes a snapshot of the view state, refreshes the visible tile
// matrix when something may have changed and draws only when the output
// would actually differ from the previous frame.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eak1mov/go-tileview/tile"
	"github.com/eak1mov/go-tileview/view"
)

const DefaultFrameInterval = 5 * time.Millisecond

var (
	ErrDraw           = errors.New("tileview: draw failed")
	ErrAlreadyRunning = errors.New("tileview: render loop already running")
)

// StateSource returns the view state of the active configuration, or nil if
// the viewport is not configured yet.
type StateSource interface {
	State() *view.State
}

type config struct {
	Logger        *slog.Logger
	FrameInterval time.Duration
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.Logger = logger }
}

// WithFrameInterval sets the pause between two loop iterations. Non-positive values are ignored.
func WithFrameInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.FrameInterval = d
		}
	}
}

// Scheduler decides frame by frame whether the viewport needs a redraw.
type Scheduler struct {
	states   StateSource
	tiles    TileSource
	surface  Surface
	logger   *slog.Logger
	interval time.Duration

	rerender atomic.Bool
	debug    atomic.Bool

	// renderMu guards the fields below; it is never the view state lock.
	renderMu     sync.Mutex
	matrix       Matrix
	lastState    *view.State
	lastCanvasX  int
	lastCanvasY  int
	lastRange    tile.Range
	statusBuffer []string

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(states StateSource, tiles TileSource, surface Surface, opts ...Option) *Scheduler {
	cfg := config{
		Logger:        slog.New(slog.DiscardHandler),
		FrameInterval: DefaultFrameInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Scheduler{
		states:   states,
		tiles:    tiles,
		surface:  surface,
		logger:   cfg.Logger,
		interval: cfg.FrameInterval,
	}
	s.rerender.Store(true)
	return s
}

// RequestRerender forces a matrix refresh and a draw on the next frame.
func (s *Scheduler) RequestRerender() {
	s.rerender.Store(true)
}

// SetDebug toggles the debug overlay.
func (s *Scheduler) SetDebug(enabled bool) {
	s.debug.Store(enabled)
	s.RequestRerender()
}

func (s *Scheduler) Debug() bool {
	return s.debug.Load()
}

// Frame runs a single iteration of the render loop and reports whether a draw pass happened.
// A viewport that is not configured yet is skipped without error.
func (s *Scheduler) Frame() (bool, error) {
	st := s.states.State()
	if st == nil {
		return false, nil
	}

	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	snap := st.Snapshot()
	if st.Config().TileSize <= 0 || !snap.Ready {
		return false, nil
	}

	// A scroll by a whole tile keeps the canvas offset but shifts the range.
	offsetChanged := snap.CanvasOffsetX != s.lastCanvasX || snap.CanvasOffsetY != s.lastCanvasY ||
		snap.Range != s.lastRange
	s.lastCanvasX, s.lastCanvasY = snap.CanvasOffsetX, snap.CanvasOffsetY
	s.lastRange = snap.Range

	fresh := s.tiles.HasFreshData()
	rerender := s.rerender.Swap(false)
	if st != s.lastState {
		s.lastState = st
		rerender = true
	}

	contentChanged := false
	if fresh || rerender || offsetChanged {
		s.matrix.Resize(st.TilesVertical(), st.TilesHorizontal())
		contentChanged = s.matrix.Refresh(snap.Range, s.tiles)
	}

	if !contentChanged && !offsetChanged && !rerender {
		return false, nil
	}

	if err := s.draw(st, snap); err != nil {
		// try again on the next frame
		s.rerender.Store(true)
		return false, err
	}
	return true, nil
}

func (s *Scheduler) draw(st *view.State, snap *view.Snapshot) (err error) {
	c, err := s.surface.Lock()
	if err != nil {
		return fmt.Errorf("%w: lock surface: %w", ErrDraw, err)
	}
	defer func() {
		if unlockErr := s.surface.Unlock(c); unlockErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: unlock surface: %w", ErrDraw, unlockErr))
		}
	}()

	c.Clear()

	dc, debug := c.(DebugCanvas)
	debug = debug && s.debug.Load()

	size := st.Config().TileSize
	top := snap.CanvasOffsetY
	for row := range s.matrix.Rows() {
		left := snap.CanvasOffsetX
		for col := range s.matrix.Cols() {
			t := s.matrix.At(row, col)
			if t.Image != nil {
				if err := c.DrawTile(t, left, top, size); err != nil {
					return fmt.Errorf("%w: tile %v: %w", ErrDraw, t.ID, err)
				}
			}
			if debug {
				dc.DrawTileOutline(t.ID, left, top, size)
			}
			left += size
		}
		top += size
	}

	if debug {
		dc.DrawStatus(s.status(st.Config(), snap))
	}
	return nil
}

func (s *Scheduler) status(cfg view.Config, snap *view.Snapshot) []string {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	lines := append(s.statusBuffer[:0],
		fmt.Sprintf("%dx%d, s=%1.3f", cfg.Width, cfg.Height, snap.Zoom),
		fmt.Sprintf("x=%5d,y=%5d, cx=%4d,cy=%4d",
			snap.SurfaceOffsetX, snap.SurfaceOffsetY, snap.CanvasOffsetX, snap.CanvasOffsetY),
		snap.Range.String(),
	)
	if summarizer, ok := s.tiles.(Summarizer); ok {
		lines = append(lines, summarizer.DebugSummary())
	}
	lines = append(lines, fmt.Sprintf("heap=%.2fMB", float64(mem.HeapAlloc)/(1<<20)))
	s.statusBuffer = lines
	return lines
}

// Run calls Frame until ctx is cancelled. Draw failures are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Debug("tileview: render loop started")
	defer s.logger.Debug("tileview: render loop stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Frame(); err != nil {
			s.logger.Warn("tileview: frame failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Start runs the render loop on a new goroutine until Stop is called or ctx is cancelled.
// Once the loop has exited, Start may be called again.
func (s *Scheduler) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.done != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	go func() {
		defer s.exited(done)
		s.Run(ctx)
	}()
	return nil
}

// exited releases the run slot of a loop that ended on its own, e.g. when the
// parent ctx was cancelled. Stop may hold runMu while waiting, so done is closed first.
func (s *Scheduler) exited(done chan struct{}) {
	close(done)

	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.done == done {
		s.cancel()
		s.cancel, s.done = nil, nil
	}
}

// Stop cancels the render loop and blocks until its goroutine has exited,
// so the surface is never left locked. Stop is a no-op if the loop is not running.
func (s *Scheduler) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.done == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}
