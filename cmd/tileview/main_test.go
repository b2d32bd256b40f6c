package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeduceFormat(t *testing.T) {
	require.Equal(t, "mbtiles", deduceFormat("", "world.mbtiles"))
	require.Equal(t, "xyz", deduceFormat("", "tiles/{z}/{x}/{y}.png"))
	require.Equal(t, "mbtiles", deduceFormat("mbtiles", "world.db"))
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestSeedRender(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, input := range []string{
		filepath.Join(dir, "xyz", "{z}", "{x}", "{y}.png"),
		filepath.Join(dir, "checker.mbtiles"),
	} {
		seed := &seedCmd{outputPath: input, zoom: 1, tileSize: 32}
		require.NoError(t, seed.seed(ctx))

		output := filepath.Join(dir, "frame.png")
		render := &renderCmd{
			viewFlags: viewFlags{
				inputPath: input,
				zoom:      -1,
				width:     96,
				height:    64,
				tileSize:  32,
				anchor:    "center",
				debug:     true,
			},
			outputPath: output,
		}
		if filepath.Ext(input) != ".mbtiles" {
			render.zoom = 1
		}
		require.NoError(t, render.render())

		w, h := decodeSize(t, output)
		require.Equal(t, 96, w)
		require.Equal(t, 64, h)
	}
}

func TestRenderRequiresZoom(t *testing.T) {
	render := &renderCmd{
		viewFlags: viewFlags{
			inputPath: filepath.Join(t.TempDir(), "{z}", "{x}", "{y}.png"),
			zoom:      -1,
			width:     64,
			height:    64,
			tileSize:  32,
			anchor:    "top-left",
		},
		outputPath: filepath.Join(t.TempDir(), "frame.png"),
	}
	require.Error(t, render.render())
}

func TestPan(t *testing.T) {
	dir := t.TempDir()
	pan := &panCmd{
		viewFlags: viewFlags{
			zoom:     -1,
			width:    64,
			height:   64,
			tileSize: 32,
			anchor:   "top-left",
		},
		outputDir: dir,
		dx:        20,
		dy:        -8,
		frames:    3,
	}
	require.NoError(t, pan.pan(context.Background()))

	for _, name := range []string{"frame0000.png", "frame0001.png", "frame0002.png"} {
		w, h := decodeSize(t, filepath.Join(dir, name))
		require.Equal(t, 64, w)
		require.Equal(t, 64, h)
	}
}
