// Package mb reads and writes tilesets in MBTiles format.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package mb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/eak1mov/go-tileview/tile"
)

// flipY converts between XYZ and TMS row numbering; the mapping is its own inverse.
func flipY(y, z uint32) uint32 {
	return (1 << z) - 1 - y
}

// Reader implements tile.Reader and tile.Visitor for MBTiles files.
type Reader struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// NewReader opens an MBTiles file read-only.
//
// The returned Reader must be closed after use to release database resources.
func NewReader(filePath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}

	stmt, err := db.Prepare("SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?")
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	return &Reader{db: db, stmt: stmt}, nil
}

func (r *Reader) Close() error {
	return errors.Join(r.stmt.Close(), r.db.Close())
}

func (r *Reader) ReadMetadata() (map[string]string, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}
	return metadata, rows.Err()
}

// ZoomRange returns the lowest and highest zoom level holding tiles.
// It reports false for an empty tileset.
func (r *Reader) ZoomRange() (minZoom, maxZoom uint32, ok bool) {
	var lo, hi sql.NullInt64
	err := r.db.QueryRow("SELECT MIN(zoom_level), MAX(zoom_level) FROM tiles").Scan(&lo, &hi)
	if err != nil || !lo.Valid || !hi.Valid {
		return 0, 0, false
	}
	return uint32(lo.Int64), uint32(hi.Int64), true
}

func (r *Reader) ReadTile(t tile.XYZ) ([]byte, error) {
	if !t.Valid() {
		return []byte{}, nil
	}

	var data []byte
	err := r.stmt.QueryRow(t.Z, t.X, flipY(t.Y, t.Z)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tileview: read tile %+v: %w", t, err)
	}
	return data, nil
}

func (r *Reader) VisitTiles(visitor func(tile.XYZ, []byte) error) error {
	rows, err := r.db.Query("SELECT zoom_level, tile_column, tile_row, tile_data FROM tiles")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t tile.XYZ
		var data []byte
		if err := rows.Scan(&t.Z, &t.X, &t.Y, &data); err != nil {
			return err
		}
		t.Y = flipY(t.Y, t.Z)
		if err := visitor(t, data); err != nil {
			return err
		}
	}
	return rows.Err()
}
