// Package view holds the mutable scroll and zoom state of one viewport.
package view

import (
	"errors"
	"fmt"

	"github.com/eak1mov/go-tileview/grid"
)

var (
	ErrInvalidConfig = errors.New("tileview: invalid viewport config")
	ErrInvalidLimits = errors.New("tileview: invalid scroll limits")
)

// Limits bounds scrolling by tile ID. A nil bound is unbounded.
type Limits struct {
	Left   *int32
	Top    *int32
	Right  *int32
	Bottom *int32
}

// ParseLimits converts a (left, top, right, bottom) tuple into Limits.
// A nil tuple means unbounded; any other length is an error.
func ParseLimits(values []*int32) (Limits, error) {
	if values == nil {
		return Limits{}, nil
	}
	if len(values) != 4 {
		return Limits{}, fmt.Errorf("%w: got %d elements, want 4", ErrInvalidLimits, len(values))
	}
	return Limits{Left: values[0], Top: values[1], Right: values[2], Bottom: values[3]}, nil
}

func (l Limits) horizontalOK(start, end int32) bool {
	return (l.Left == nil || start >= *l.Left) && (l.Right == nil || end <= *l.Right)
}

func (l Limits) verticalOK(start, end int32) bool {
	return (l.Top == nil || start >= *l.Top) && (l.Bottom == nil || end <= *l.Bottom)
}

// Config is fixed for the lifetime of a surface.
type Config struct {
	Width      int
	Height     int
	TileSize   int
	Limits     Limits
	GridBuffer int
}

func (c Config) validate() error {
	if c.TileSize <= 0 {
		return fmt.Errorf("%w: tile size %d", ErrInvalidConfig, c.TileSize)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: surface %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	return nil
}

// TilesHorizontal is the number of tile columns rendered, grid buffer included.
func (c Config) TilesHorizontal() int {
	return grid.MaxTilesNeeded(c.Width, c.TileSize) + 2*c.GridBuffer
}

// TilesVertical is the number of tile rows rendered, grid buffer included.
func (c Config) TilesVertical() int {
	return grid.MaxTilesNeeded(c.Height, c.TileSize) + 2*c.GridBuffer
}
