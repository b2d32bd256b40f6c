package supplier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/eak1mov/go-tileview/tile"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
)

var ErrDecode = errors.New("tileview: failed to decode tile")

var checkerPalette = [5]color.RGBA{
	{R: 0x4e, G: 0x79, B: 0xa7, A: 0xff},
	{R: 0xf2, G: 0x8e, B: 0x2b, A: 0xff},
	{R: 0x59, G: 0xa1, B: 0x4f, A: 0xff},
	{R: 0xe1, G: 0x57, B: 0x59, A: 0xff},
	{R: 0x76, G: 0xb7, B: 0xb2, A: 0xff},
}

// Checker generates procedural tiles: a colored cell repeating every 5 tiles
// in both directions, labeled with the tile ID.
type Checker struct {
	Size int
}

func mod5(v int32) int {
	return int((v%5 + 5) % 5)
}

func (c Checker) Generate(ctx context.Context, id tile.ID) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := c.Size
	if size <= 0 {
		size = DefaultTileSize
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	fill := checkerPalette[(mod5(id.X)+mod5(id.Y))%len(checkerPalette)]
	if (id.X+id.Y)%2 != 0 {
		fill.R, fill.G, fill.B = fill.R/4*3, fill.G/4*3, fill.B/4*3
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{fill}, image.Point{}, draw.Src)

	label := id.String()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(label).Ceil()
	d.Dot = fixed.P((size-width)/2, size/2+basicfont.Face7x13.Ascent/2)
	d.DrawString(label)

	return img, nil
}

// StoreGenerator reads encoded tiles (PNG, JPEG or WebP) from a tileset at a
// fixed zoom level. Lattice IDs outside of the zoom level square have no tile.
type StoreGenerator struct {
	Reader tile.Reader
	Zoom   uint32
}

func (g StoreGenerator) Generate(ctx context.Context, id tile.ID) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr, ok := id.At(g.Zoom)
	if !ok {
		return nil, ErrNoTile
	}

	data, err := g.Reader.ReadTile(addr)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoTile
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w %v: %w", ErrDecode, addr, err)
	}
	return img, nil
}
