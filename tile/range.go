package tile

import (
	"fmt"
	"iter"
)

// Range is an inclusive rectangle of tile IDs.
type Range struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// Empty reports whether the range has no area. A single row or column counts as empty.
func (r Range) Empty() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

func (r Range) Contains(x, y int32) bool {
	return r.ContainsPadded(x, y, 0)
}

// ContainsPadded reports whether (x, y) lies within the range expanded by pad tiles
// in every direction. Negative pad is treated as 0.
func (r Range) ContainsPadded(x, y int32, pad int32) bool {
	pad = max(0, pad)
	return !r.Empty() &&
		int64(x) >= int64(r.Left)-int64(pad) &&
		int64(x) <= int64(r.Right)+int64(pad) &&
		int64(y) >= int64(r.Top)-int64(pad) &&
		int64(y) <= int64(r.Bottom)+int64(pad)
}

func (r Range) NumHorizontal() int {
	if r.Empty() {
		return 0
	}
	return int(max(0, int64(r.Right)-int64(r.Left)+1))
}

func (r Range) NumVertical() int {
	if r.Empty() {
		return 0
	}
	return int(max(0, int64(r.Bottom)-int64(r.Top)+1))
}

func (r Range) NumTiles() int {
	return r.NumHorizontal() * r.NumVertical()
}

// IDs returns an iterator over the IDs of the range in row-major order.
func (r Range) IDs() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		if r.Empty() {
			return
		}
		for y := int64(r.Top); y <= int64(r.Bottom); y++ {
			for x := int64(r.Left); x <= int64(r.Right); x++ {
				if !yield(ID{X: int32(x), Y: int32(y)}) {
					return
				}
			}
		}
	}
}

func (r Range) String() string {
	return fmt.Sprintf("TR[x=%d to %d,y=%d to %d,n=%d*%d=%d]",
		r.Left, r.Right, r.Top, r.Bottom, r.NumHorizontal(), r.NumVertical(), r.NumTiles())
}
