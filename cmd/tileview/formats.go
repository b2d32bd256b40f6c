package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/eak1mov/go-tileview/mb"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/eak1mov/go-tileview/xyz"
)

func deduceFormat(format, filePath string) string {
	if format == "" && strings.HasSuffix(filePath, ".mbtiles") {
		return "mbtiles"
	}
	if format == "" {
		return "xyz"
	}
	return format
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openReader opens a tileset for reading. zoom is the highest zoom level of an
// MBTiles file, or -1 when unknown.
func openReader(format, path string) (tile.Reader, io.Closer, int, error) {
	switch deduceFormat(format, path) {
	case "mbtiles":
		r, err := mb.NewReader(path)
		if err != nil {
			return nil, nil, 0, err
		}
		zoom := -1
		if _, hi, ok := r.ZoomRange(); ok {
			zoom = int(hi)
		}
		return r, r, zoom, nil
	case "xyz":
		r, err := xyz.NewReader(path)
		if err != nil {
			return nil, nil, 0, err
		}
		return r, nopCloser{}, -1, nil
	}
	return nil, nil, 0, fmt.Errorf("invalid input format: %q", format)
}

func openWriter(format, path string, metadata map[string]string) (tile.Writer, io.Closer, error) {
	switch deduceFormat(format, path) {
	case "mbtiles":
		w, err := mb.NewWriter(path, mb.WithMetadata(metadata), mb.WithLogger(slog.Default()))
		if err != nil {
			return nil, nil, err
		}
		return w, w, nil
	case "xyz":
		w, err := xyz.NewWriter(path)
		if err != nil {
			return nil, nil, err
		}
		return w, nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("invalid output format: %q", format)
}
