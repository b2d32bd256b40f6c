package render

import "github.com/eak1mov/go-tileview/tile"

// Matrix holds the tiles of the visible grid together with the content hashes seen
// in the previous refresh. Storage is reused between frames and reallocated only
// when the grid dimensions change.
type Matrix struct {
	rows, cols int

	tiles        []*tile.Tile
	hashes       []uint64
	placeholders []tile.Tile
}

// Resize sets the grid dimensions, reporting whether storage was reallocated.
func (m *Matrix) Resize(rows, cols int) bool {
	if rows == m.rows && cols == m.cols && m.tiles != nil {
		return false
	}
	m.rows, m.cols = rows, cols
	m.tiles = make([]*tile.Tile, rows*cols)
	m.hashes = make([]uint64, rows*cols)
	m.placeholders = make([]tile.Tile, rows*cols)
	for i := range m.tiles {
		m.tiles[i] = &m.placeholders[i]
	}
	return true
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// At returns the tile in the given cell. It is never nil: missing content is a placeholder.
func (m *Matrix) At(row, col int) *tile.Tile {
	return m.tiles[row*m.cols+col]
}

// Refresh fetches every cell of r from src and reports whether any content hash
// differs from the previous refresh, including content appearing or disappearing.
func (m *Matrix) Refresh(r tile.Range, src TileSource) bool {
	changed := false
	for row := range m.rows {
		y := r.Top + int32(row)
		for col := range m.cols {
			x := r.Left + int32(col)
			i := row*m.cols + col

			t := src.Tile(x, y)
			if t == nil {
				p := &m.placeholders[i]
				*p = tile.Tile{ID: tile.ID{X: x, Y: y}}
				t = p
			}

			hash := t.ContentHash()
			if hash != m.hashes[i] {
				changed = true
			}
			m.hashes[i] = hash
			m.tiles[i] = t
		}
	}
	return changed
}
