// Package grid maps scroll offsets to tile ID ranges and pixel alignment.
//
// All functions are pure. A non-positive tile width is a caller contract
// violation and panics.
package grid

import "fmt"

func checkTileWidth(tileWidth int) {
	if tileWidth <= 0 {
		panic(fmt.Sprintf("tileview: invalid tile width %d", tileWidth))
	}
}

// TileRangeForOffset returns the first and last tile IDs along one axis for the
// given surface offset. tiles is the number of tiles rendered along the axis,
// including the grid buffer on both sides.
func TileRangeForOffset(offsetPx, tiles, tileWidth, buffer int) (start, end int32) {
	checkTileWidth(tileWidth)

	first := -(offsetPx / tileWidth)
	// Go division truncates towards zero: a positive remainder needs one more tile before.
	if offsetPx%tileWidth > 0 {
		first--
	}
	first -= buffer

	return int32(first), int32(first + tiles - 1)
}

// CanvasOffset returns the pixel position of the first rendered tile along one
// axis. Without a grid buffer the result is always in (-tileWidth, 0].
func CanvasOffset(surfaceOffsetPx, tileWidth, buffer int) int {
	checkTileWidth(tileWidth)

	remainder := surfaceOffsetPx % tileWidth
	if remainder > 0 {
		remainder -= tileWidth
	}
	return remainder - tileWidth*buffer
}

// MaxTilesNeeded returns the number of tiles needed to cover viewportPx pixels
// at any scroll position: the rounded-up tile count plus one partially scrolled tile.
func MaxTilesNeeded(viewportPx, tileWidth int) int {
	checkTileWidth(tileWidth)

	n := viewportPx / tileWidth
	if viewportPx%tileWidth != 0 {
		n++
	}
	return n + 1
}
