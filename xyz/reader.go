package xyz

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/eak1mov/go-tileview/tile"
)

// Reader implements tile.Reader and tile.Visitor for a directory tileset.
type Reader struct {
	pattern *Pattern
}

// NewReader creates a Reader for the given file pattern (e.g. "/home/user/tiles/{z}/{x}/{y}.png").
func NewReader(filePattern string) (*Reader, error) {
	p, err := ParsePattern(filePattern)
	if err != nil {
		return nil, err
	}
	return &Reader{pattern: p}, nil
}

func (r *Reader) ReadTile(t tile.XYZ) ([]byte, error) {
	data, err := os.ReadFile(r.pattern.Format(t))
	if errors.Is(err, fs.ErrNotExist) {
		return []byte{}, nil
	}
	return data, err
}

// VisitTiles walks the pattern root; files not matching the pattern are skipped.
func (r *Reader) VisitTiles(visitor func(tile.XYZ, []byte) error) error {
	return filepath.WalkDir(r.pattern.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		t, ok := r.pattern.Match(path)
		if !ok {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return visitor(t, data)
	})
}
