package tile

// Writer defines an interface for writing tiles to a tileset.
type Writer interface {
	// WriteTile writes a single tile to the tileset.
	WriteTile(tileID XYZ, tileData []byte) error

	// Finalize completes the writing process: flushes buffers and writes indices.
	// It must be called before closing the Writer.
	Finalize() error
}

type Reader interface {
	// ReadTile reads a single tile from the tileset.
	// If the tile does not exist, it returns an empty slice with no error.
	ReadTile(tileID XYZ) ([]byte, error)
}

type Visitor interface {
	// VisitTiles visits all tiles in the tileset, calling the visitor for each.
	// Order of tiles is implementation-defined.
	VisitTiles(visitor func(XYZ, []byte) error) error
}
