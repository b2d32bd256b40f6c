package tile_test

import (
	"image"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/eak1mov/go-tileview/tile"
	"github.com/google/go-cmp/cmp"
)

func TestPackUnpack(t *testing.T) {
	edges := []int32{math.MinInt32, math.MinInt32 + 1, -256, -1, 0, 1, 255, math.MaxInt32 - 1, math.MaxInt32}
	for _, x := range edges {
		for _, y := range edges {
			id := tile.ID{X: x, Y: y}
			if diff := cmp.Diff(id, tile.Unpack(tile.Pack(id))); diff != "" {
				t.Errorf("Unpack(Pack(%v)) mismatch (-want+got):\n%v", id, diff)
			}
		}
	}
	r := rand.New(rand.NewPCG(1, 2))
	for range 10_000 {
		id := tile.ID{X: int32(r.Uint32()), Y: int32(r.Uint32())}
		if got := tile.Unpack(tile.Pack(id)); got != id {
			t.Fatalf("Unpack(Pack(%v)) = %v", id, got)
		}
	}
}

func TestPackLayout(t *testing.T) {
	if got, want := tile.Pack(tile.ID{X: 1, Y: 2}), uint64(1<<32|2); got != want {
		t.Errorf("Pack({1,2}) = %#x, want = %#x", got, want)
	}
	if got, want := tile.Pack(tile.ID{X: 0, Y: -1}), uint64(0xFFFFFFFF); got != want {
		t.Errorf("Pack({0,-1}) = %#x, want = %#x", got, want)
	}
	if tile.Pack(tile.ID{X: -1, Y: 0}) == tile.Pack(tile.ID{X: 0, Y: -1}) {
		t.Errorf("Pack collision for {-1,0} and {0,-1}")
	}
}

func TestAt(t *testing.T) {
	for _, tc := range []struct {
		id   tile.ID
		z    uint32
		want tile.XYZ
		ok   bool
	}{
		{tile.ID{X: 0, Y: 0}, 0, tile.XYZ{X: 0, Y: 0, Z: 0}, true},
		{tile.ID{X: 1, Y: 0}, 0, tile.XYZ{}, false},
		{tile.ID{X: 3, Y: 2}, 2, tile.XYZ{X: 3, Y: 2, Z: 2}, true},
		{tile.ID{X: 4, Y: 2}, 2, tile.XYZ{}, false},
		{tile.ID{X: -1, Y: 0}, 5, tile.XYZ{}, false},
		{tile.ID{X: 0, Y: 0}, 32, tile.XYZ{}, false},
	} {
		got, ok := tc.id.At(tc.z)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("%v.At(%d) = %v, %v, want = %v, %v", tc.id, tc.z, got, ok, tc.want, tc.ok)
		}
	}
}

func TestContentHash(t *testing.T) {
	var missing *tile.Tile
	if got := missing.ContentHash(); got != 0 {
		t.Errorf("nil.ContentHash() = %d, want = 0", got)
	}
	placeholder := &tile.Tile{ID: tile.ID{X: 1, Y: 1}}
	if got := placeholder.ContentHash(); got != 0 {
		t.Errorf("placeholder.ContentHash() = %d, want = 0", got)
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	a := tile.New(tile.ID{}, img)
	b := tile.New(tile.ID{}, img)
	if a.ContentHash() == 0 || b.ContentHash() == 0 {
		t.Errorf("ContentHash() of tile with content must not be 0")
	}
	if a.ContentHash() == b.ContentHash() {
		t.Errorf("tiles created separately share version %d", a.ContentHash())
	}
}
