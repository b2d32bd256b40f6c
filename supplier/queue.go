// Package supplier provides an asynchronous tile supplier that generates the
// tiles of the visible range in the background and caches them.
package supplier

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eak1mov/go-tileview/grid"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/google/hilbert"
)

const DefaultTileSize = 256

// ErrNoTile is returned by generators for tiles that have no content.
// It is not treated as a failure.
var ErrNoTile = errors.New("tileview: no tile")

// Generator produces the image of a single tile. It may be called from a
// background goroutine, never concurrently, and should return early when ctx is cancelled.
type Generator interface {
	Generate(ctx context.Context, id tile.ID) (image.Image, error)
}

type GeneratorFunc func(ctx context.Context, id tile.ID) (image.Image, error)

func (f GeneratorFunc) Generate(ctx context.Context, id tile.ID) (image.Image, error) {
	return f(ctx, id)
}

type queueConfig struct {
	TileSize     int
	Anchor       grid.Anchor
	Limits       []*int32
	GridBuffer   int
	EvictPadding int32
	Throttle     time.Duration
	Logger       *slog.Logger
}

type Option func(*queueConfig)

func WithTileSize(size int) Option {
	return func(c *queueConfig) { c.TileSize = size }
}

func WithGridAnchor(anchor grid.Anchor) Option {
	return func(c *queueConfig) { c.Anchor = anchor }
}

// WithScrollLimits sets (left, top, right, bottom) tile ID limits; nil entries are unbounded.
func WithScrollLimits(limits ...*int32) Option {
	return func(c *queueConfig) { c.Limits = limits }
}

func WithGridBuffer(buffer int) Option {
	return func(c *queueConfig) { c.GridBuffer = buffer }
}

// WithEvictPadding keeps cached tiles up to padding tiles outside of the visible range.
func WithEvictPadding(padding int32) Option {
	return func(c *queueConfig) { c.EvictPadding = padding }
}

// WithThrottle pauses the background worker after every generated tile.
func WithThrottle(d time.Duration) Option {
	return func(c *queueConfig) { c.Throttle = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *queueConfig) { c.Logger = logger }
}

// Queue is a tile supplier backed by a Generator. Every range change evicts
// tiles far from the new range, cancels the pending work and queues the missing
// tiles of the new range for a background worker.
type Queue struct {
	gen    Generator
	config queueConfig
	logger *slog.Logger

	fresh atomic.Bool
	zoom  atomic.Uint64

	mu    sync.RWMutex
	cache map[uint64]*tile.Tile

	taskMu sync.Mutex
	cancel context.CancelFunc
	last   chan struct{} // closed when the last submitted task exits
	wg     sync.WaitGroup
}

func NewQueue(gen Generator, opts ...Option) *Queue {
	config := queueConfig{
		TileSize:     DefaultTileSize,
		EvictPadding: 1,
		Logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	q := &Queue{
		gen:    gen,
		config: config,
		logger: config.Logger,
		cache:  make(map[uint64]*tile.Tile),
	}
	q.zoom.Store(math.Float64bits(1))
	return q
}

func (q *Queue) TileSize() int           { return q.config.TileSize }
func (q *Queue) GridAnchor() grid.Anchor { return q.config.Anchor }
func (q *Queue) ScrollLimits() []*int32  { return q.config.Limits }
func (q *Queue) GridBuffer() int         { return q.config.GridBuffer }

func (q *Queue) Tile(x, y int32) *tile.Tile {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.cache[tile.Pack(tile.ID{X: x, Y: y})]
}

func (q *Queue) HasFreshData() bool {
	return q.fresh.Swap(false)
}

// Zoom returns the last zoom factor reported by the viewer.
func (q *Queue) Zoom() float64 {
	return math.Float64frombits(q.zoom.Load())
}

func (q *Queue) CacheSize() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.cache)
}

func (q *Queue) DebugSummary() string {
	return fmt.Sprintf("queue[cache=%d]", q.CacheSize())
}

func (q *Queue) NotifyZoomChanged(zoom float64) {
	q.zoom.Store(math.Float64bits(zoom))
	q.logger.Debug("tileview: zoom changed", "zoom", zoom)
}

// NotifyRangeChanged cancels the pending task and submits the missing tiles of r.
// It does not block: a task starts generating only after the previous one has
// exited, so at most one Generate call runs at a time.
func (q *Queue) NotifyRangeChanged(r tile.Range) {
	q.taskMu.Lock()
	defer q.taskMu.Unlock()

	// Cancel before evicting, so that the old task cannot store tiles of the old range afterwards.
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}

	missing := q.evictAndCollect(r)
	if len(missing) == 0 {
		return
	}
	hilbertSort(r, missing)

	ctx, cancel := context.WithCancel(context.Background())
	prev, done := q.last, make(chan struct{})
	q.cancel, q.last = cancel, done
	q.wg.Add(1)
	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		q.process(ctx, missing)
	}()

	q.logger.Debug("tileview: queued tiles", "range", r.String(), "count", len(missing))
}

// NotifySurfaceTornDown cancels pending work and waits for the worker to exit.
func (q *Queue) NotifySurfaceTornDown() {
	q.taskMu.Lock()
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.taskMu.Unlock()

	q.wg.Wait()
	q.logger.Debug("tileview: supplier stopped")
}

// Wait blocks until all queued work is done or cancelled.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) evictAndCollect(r tile.Range) []tile.ID {
	q.mu.Lock()
	defer q.mu.Unlock()

	for key, t := range q.cache {
		if !r.ContainsPadded(t.ID.X, t.ID.Y, q.config.EvictPadding) {
			delete(q.cache, key)
		}
	}

	missing := make([]tile.ID, 0, r.NumTiles())
	for id := range r.IDs() {
		if _, ok := q.cache[tile.Pack(id)]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func (q *Queue) process(ctx context.Context, ids []tile.ID) {
	defer q.wg.Done()

	for _, id := range ids {
		if ctx.Err() != nil {
			q.logger.Debug("tileview: queue processing interrupted")
			return
		}
		if q.Tile(id.X, id.Y) != nil {
			continue
		}

		img, err := q.gen.Generate(ctx, id)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrNoTile) {
			continue
		}
		if err != nil {
			q.logger.Warn("tileview: failed to generate tile", "tile", id.String(), "error", err)
			continue
		}

		if !q.store(ctx, tile.New(id, img)) {
			return
		}

		if q.config.Throttle > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(q.config.Throttle):
			}
		}
	}

	q.logger.Debug("tileview: queue processing finished", "count", len(ids))
}

// store caches t unless ctx was cancelled; eviction for a new range only runs after the cancellation.
func (q *Queue) store(ctx context.Context, t *tile.Tile) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}
	q.cache[tile.Pack(t.ID)] = t
	q.fresh.Store(true)
	return true
}

// hilbertSort orders ids along a Hilbert curve laid over r, so that tiles
// close to each other are generated close in time.
func hilbertSort(r tile.Range, ids []tile.ID) {
	if len(ids) < 2 {
		return
	}
	n := 1
	for n < r.NumHorizontal() || n < r.NumVertical() {
		n <<= 1
	}
	h, err := hilbert.NewHilbert(n)
	if err != nil {
		return
	}

	type item struct {
		id tile.ID
		d  int
	}
	items := make([]item, len(ids))
	for i, id := range ids {
		d, err := h.MapInverse(int(id.X-r.Left), int(id.Y-r.Top))
		if err != nil {
			return
		}
		items[i] = item{id, d}
	}
	slices.SortFunc(items, func(a, b item) int { return a.d - b.d })
	for i := range items {
		ids[i] = items[i].id
	}
}
