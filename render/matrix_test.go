package render_test

import (
	"image/color"
	"testing"

	"github.com/eak1mov/go-tileview/internal"
	"github.com/eak1mov/go-tileview/render"
	"github.com/eak1mov/go-tileview/tile"
)

func TestMatrixResize(t *testing.T) {
	var m render.Matrix
	if !m.Resize(3, 5) {
		t.Errorf("first Resize did not allocate")
	}
	if m.Resize(3, 5) {
		t.Errorf("Resize with same dimensions reallocated")
	}
	if !m.Resize(4, 5) {
		t.Errorf("Resize with new dimensions did not reallocate")
	}
	for row := range m.Rows() {
		for col := range m.Cols() {
			if m.At(row, col) == nil {
				t.Fatalf("At(%d, %d) = nil", row, col)
			}
		}
	}
}

func TestMatrixRefresh(t *testing.T) {
	supplier := internal.NewSupplier(256)
	r := tile.Range{Left: -1, Top: -1, Right: 1, Bottom: 1}

	var m render.Matrix
	m.Resize(3, 3)
	if m.Refresh(r, supplier) {
		t.Errorf("Refresh of empty supplier reported change")
	}
	if got, want := m.At(0, 0).ID, (tile.ID{X: -1, Y: -1}); got != want {
		t.Errorf("placeholder ID = %v, want = %v", got, want)
	}
	if got := m.At(0, 0).ContentHash(); got != 0 {
		t.Errorf("placeholder ContentHash() = %d, want = 0", got)
	}

	content := supplier.Set(tile.ID{X: 1, Y: 0}, internal.Solid(color.White))
	if !m.Refresh(r, supplier) {
		t.Errorf("Refresh did not detect new content")
	}
	if got := m.At(1, 2); got != content {
		t.Errorf("At(1, 2) = %v, want = %v", got, content)
	}
	if m.Refresh(r, supplier) {
		t.Errorf("Refresh reported change for identical content")
	}

	if allocs := testing.AllocsPerRun(100, func() { m.Refresh(r, supplier) }); allocs != 0 {
		t.Errorf("Refresh allocates %v times per call", allocs)
	}
}
