package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"

	"github.com/eak1mov/go-tileview/canvas"
	"github.com/eak1mov/go-tileview/grid"
	"github.com/eak1mov/go-tileview/supplier"
	"github.com/eak1mov/go-tileview/viewer"
)

// viewFlags are shared by the commands that render through a Viewer.
type viewFlags struct {
	inputFormat string
	inputPath   string
	zoom        int
	width       int
	height      int
	tileSize    int
	x, y        int
	anchor      string
	buffer      int
	debug       bool
}

func (f *viewFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.inputPath, "i", "", "Input tileset path; a checker pattern is rendered if empty")
	fs.StringVar(&f.inputFormat, "if", "", "Input format (mbtiles, xyz)")
	fs.IntVar(&f.zoom, "z", -1, "Zoom level to read; defaults to the highest zoom of an MBTiles file")
	fs.IntVar(&f.width, "w", 800, "Surface width in pixels")
	fs.IntVar(&f.height, "h", 480, "Surface height in pixels")
	fs.IntVar(&f.tileSize, "s", supplier.DefaultTileSize, "Tile size in pixels")
	fs.IntVar(&f.x, "x", 0, "Tile column to move to")
	fs.IntVar(&f.y, "y", 0, "Tile row to move to")
	fs.StringVar(&f.anchor, "anchor", "top-left", "Where the target tile is placed (top-left, center, bottom-right, ...)")
	fs.IntVar(&f.buffer, "buffer", 0, "Extra tiles fetched on every side")
	fs.BoolVar(&f.debug, "debug", false, "Draw the debug overlay")
}

type session struct {
	queue   *supplier.Queue
	surface *canvas.Surface
	viewer  *viewer.Viewer
	closer  io.Closer
}

func (f *viewFlags) open() (*session, error) {
	anchor, err := grid.ParseAnchor(f.anchor)
	if err != nil {
		return nil, err
	}

	var gen supplier.Generator = supplier.Checker{Size: f.tileSize}
	var closer io.Closer = nopCloser{}
	if f.inputPath != "" {
		reader, c, zoom, err := openReader(f.inputFormat, f.inputPath)
		if err != nil {
			return nil, err
		}
		if f.zoom >= 0 {
			zoom = f.zoom
		}
		if zoom < 0 {
			return nil, errors.Join(errors.New("zoom level is required for this tileset"), c.Close())
		}
		gen = supplier.StoreGenerator{Reader: reader, Zoom: uint32(zoom)}
		closer = c
	}

	logger := slog.Default()
	queue := supplier.NewQueue(gen,
		supplier.WithTileSize(f.tileSize),
		supplier.WithGridAnchor(anchor),
		supplier.WithGridBuffer(f.buffer),
		supplier.WithLogger(logger),
	)
	surface := canvas.New(f.width, f.height, canvas.WithLogger(logger))
	v := viewer.New(queue, surface, viewer.WithLogger(logger))
	v.SetDebug(f.debug)

	if err := v.Configure(f.width, f.height); err != nil {
		return nil, errors.Join(err, closer.Close())
	}
	v.MoveToTile(int32(f.x), int32(f.y), false)

	return &session{queue: queue, surface: surface, viewer: v, closer: closer}, nil
}

// frame waits for the tiles of the visible range and draws them.
func (s *session) frame() error {
	s.queue.Wait()
	if _, err := s.viewer.Frame(); err != nil {
		return err
	}
	return nil
}

func (s *session) save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, s.surface.Snapshot()); err != nil {
		return errors.Join(fmt.Errorf("encode %s: %w", path, err), file.Close())
	}
	return file.Close()
}

func (s *session) Close() error {
	s.queue.NotifySurfaceTornDown()
	return s.closer.Close()
}
