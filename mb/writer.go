package mb

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eak1mov/go-tileview/tile"
)

const schema = `
	CREATE TABLE metadata (name TEXT, value TEXT);
	CREATE TABLE tiles (
		zoom_level INTEGER,
		tile_column INTEGER,
		tile_row INTEGER,
		tile_data BLOB
	);
`

// Writer fills a new MBTiles file, e.g. with seeded tiles.
// All tiles go into one transaction that Finalize commits; closing an
// unfinalized Writer discards them.
type Writer struct {
	db     *sql.DB
	tx     *sql.Tx
	insert *sql.Stmt
	logger *slog.Logger
	count  int
}

type writerConfig struct {
	Metadata map[string]string
	Logger   *slog.Logger
}

type WriterOption func(*writerConfig)

// WithMetadata sets the rows of the metadata table (name, format, minzoom, ...).
func WithMetadata(metadata map[string]string) WriterOption {
	return func(c *writerConfig) { c.Metadata = metadata }
}

func WithLogger(logger *slog.Logger) WriterOption {
	return func(c *writerConfig) { c.Logger = logger }
}

func NewWriter(filePath string, opts ...WriterOption) (w *Writer, err error) {
	config := writerConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Join(fmt.Errorf("tileview: create %s: %w", filePath, err), db.Close())
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback(), db.Close())
		}
	}()

	for name, value := range config.Metadata {
		if _, err := tx.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", name, value); err != nil {
			return nil, err
		}
	}

	insert, err := tx.Prepare("INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, err
	}

	return &Writer{db: db, tx: tx, insert: insert, logger: config.Logger}, nil
}

// Close releases the database. Tiles written since the last Finalize are discarded.
func (w *Writer) Close() error {
	var err error
	if w.tx != nil {
		err = w.tx.Rollback()
		w.tx = nil
	}
	return errors.Join(err, w.db.Close())
}

func (w *Writer) WriteTile(t tile.XYZ, data []byte) error {
	if !t.Valid() {
		return fmt.Errorf("tileview: invalid tile address %+v", t)
	}
	if w.tx == nil {
		return errors.New("tileview: writer already finalized")
	}
	if _, err := w.insert.Exec(t.Z, t.X, flipY(t.Y, t.Z), data); err != nil {
		return err
	}
	w.count++
	return nil
}

// Finalize commits the written tiles and indexes them. The Writer accepts no tiles afterwards.
func (w *Writer) Finalize() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit()
	w.tx = nil
	if err != nil {
		return err
	}

	w.logger.Debug("tileview: indexing tiles", "tiles", w.count)
	_, err = w.db.Exec("CREATE UNIQUE INDEX tile_index ON tiles (zoom_level, tile_column, tile_row)")
	return err
}
