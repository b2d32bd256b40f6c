package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"strconv"

	"github.com/eak1mov/go-tileview/supplier"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

const maxSeedZoom = 10

type seedCmd struct {
	outputFormat string
	outputPath   string
	zoom         int
	tileSize     int
}

func (c *seedCmd) Name() string     { return "seed" }
func (c *seedCmd) Synopsis() string { return "write a procedural checker tileset" }
func (c *seedCmd) Usage() string {
	return "tileview seed -o <path> [-of <format>] [-z <zoom>] [-s <size>]\n"
}
func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputPath, "o", "", "Output path (file for mbtiles, pattern like dir/{z}/{x}/{y}.png for xyz)")
	f.StringVar(&c.outputFormat, "of", "", "Output format (mbtiles, xyz)")
	f.IntVar(&c.zoom, "z", 3, "Zoom level")
	f.IntVar(&c.tileSize, "s", supplier.DefaultTileSize, "Tile size in pixels")
}

func (c *seedCmd) seed(ctx context.Context) error {
	if c.zoom < 0 || c.zoom > maxSeedZoom {
		return fmt.Errorf("zoom out of range [0, %d]: %d", maxSeedZoom, c.zoom)
	}
	z := strconv.Itoa(c.zoom)
	writer, closer, err := openWriter(c.outputFormat, c.outputPath, map[string]string{
		"name":    "checker",
		"format":  "png",
		"minzoom": z,
		"maxzoom": z,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	n := int32(1) << c.zoom
	gen := supplier.Checker{Size: c.tileSize}
	bar := progressbar.NewOptions64(int64(n)*int64(n), progressbar.OptionShowIts(), progressbar.OptionShowCount())
	defer bar.Finish()

	var buf bytes.Buffer
	for id := range (tile.Range{Left: 0, Top: 0, Right: n - 1, Bottom: n - 1}).IDs() {
		img, err := gen.Generate(ctx, id)
		if err != nil {
			return err
		}
		buf.Reset()
		if err := png.Encode(&buf, img); err != nil {
			return err
		}
		addr, _ := id.At(uint32(c.zoom))
		if err := writer.WriteTile(addr, buf.Bytes()); err != nil {
			return err
		}
		bar.Add(1)
	}
	return writer.Finalize()
}

func (c *seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.outputPath == "" {
		slog.Error("missing output path")
		return subcommands.ExitUsageError
	}
	if err := c.seed(ctx); err != nil {
		slog.Error("seed failed", "error", err)
		return subcommands.ExitFailure
	}
	fmt.Println()
	return subcommands.ExitSuccess
}
