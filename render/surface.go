package render

import "github.com/eak1mov/go-tileview/tile"

// Surface is the platform drawing target. Lock acquires the back buffer;
// Unlock releases it and presents what was drawn. Every successful Lock is
// paired with exactly one Unlock.
type Surface interface {
	Lock() (Canvas, error)
	Unlock(c Canvas) error
}

// Canvas draws into a locked surface, in surface pixel coordinates.
type Canvas interface {
	// Clear blanks the whole surface.
	Clear()

	// DrawTile draws t with its top-left corner at (left, top), scaled to size x size pixels.
	DrawTile(t *tile.Tile, left, top, size int) error
}

// DebugCanvas is implemented by canvases that can draw the debug overlay.
type DebugCanvas interface {
	Canvas

	// DrawTileOutline draws the cell border and its tile ID label.
	DrawTileOutline(id tile.ID, left, top, size int)

	// DrawStatus draws a status box with one line per entry.
	DrawStatus(lines []string)
}

// TileSource is the part of the tile supplier used by the render loop.
// Both methods are called from the render goroutine at frame rate.
type TileSource interface {
	// Tile returns the content of tile (x, y) or nil when it is not available yet.
	Tile(x, y int32) *tile.Tile

	// HasFreshData reports whether new content arrived since the previous call, and clears the flag.
	HasFreshData() bool
}

// Summarizer is optionally implemented by tile sources to show a line in the debug overlay.
type Summarizer interface {
	DebugSummary() string
}
