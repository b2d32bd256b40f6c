package xyz

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eak1mov/go-tileview/tile"
)

// Writer implements tile.Writer for a directory tileset.
type Writer struct {
	pattern *Pattern
}

func NewWriter(filePattern string) (*Writer, error) {
	p, err := ParsePattern(filePattern)
	if err != nil {
		return nil, err
	}
	return &Writer{pattern: p}, nil
}

func (w *Writer) WriteTile(t tile.XYZ, data []byte) error {
	if !t.Valid() {
		return fmt.Errorf("tileview: invalid tile address %+v", t)
	}
	path := w.pattern.Format(t)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (w *Writer) Finalize() error {
	return nil
}
