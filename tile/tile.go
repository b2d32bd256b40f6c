// Package tile provides common tile types and interfaces.
package tile

import (
	"fmt"
	"image"
	"sync/atomic"
)

// ID identifies a cell in the unbounded integer tile lattice.
type ID struct {
	X int32
	Y int32
}

// Pack packs the ID into a single key: X in the high 32 bits, Y in the low 32 bits.
func Pack(id ID) uint64 {
	return uint64(uint32(id.X))<<32 | uint64(uint32(id.Y))
}

// Unpack is the inverse of Pack.
func Unpack(key uint64) ID {
	return ID{X: int32(uint32(key >> 32)), Y: int32(uint32(key))}
}

func (id ID) String() string {
	return fmt.Sprintf("[%d,%d]", id.X, id.Y)
}

// XYZ represents tile coordinates in the XYZ scheme (Tiled web map).
type XYZ struct {
	X uint32
	Y uint32
	Z uint32
}

func (t XYZ) Valid() bool {
	return t.Z < 32 && t.X < (1<<t.Z) && t.Y < (1<<t.Z)
}

// At maps the lattice ID onto zoom level z of a tiled web map.
// It reports false for IDs outside of the 2^z x 2^z square.
func (id ID) At(z uint32) (XYZ, bool) {
	if id.X < 0 || id.Y < 0 || z >= 32 {
		return XYZ{}, false
	}
	t := XYZ{X: uint32(id.X), Y: uint32(id.Y), Z: z}
	return t, t.Valid()
}

var lastVersion atomic.Uint64

// Tile is a unit of rendered content. Tiles are immutable: new content means a new Tile.
type Tile struct {
	ID    ID
	Image image.Image

	version uint64
}

// New creates a tile holding img, stamped with a process-unique version.
func New(id ID, img image.Image) *Tile {
	return &Tile{ID: id, Image: img, version: lastVersion.Add(1)}
}

// ContentHash identifies the tile content for change detection.
// A nil tile or a tile without image (placeholder) hashes to 0.
func (t *Tile) ContentHash() uint64 {
	if t == nil || t.Image == nil {
		return 0
	}
	return t.version
}

func (t *Tile) String() string {
	if t == nil {
		return "Tile[nil]"
	}
	return fmt.Sprintf("Tile[%v,v=%d]", t.ID, t.ContentHash())
}
