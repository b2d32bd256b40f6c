package tile

import (
	"errors"
	"iter"
)

var errVisitCancelled = errors.New("visit cancelled")

// IterTiles returns an iterator over all tiles in the tileset.
// It yields tile addresses and their data. Iteration panics on unrecoverable errors.
func IterTiles(r Visitor) iter.Seq2[XYZ, []byte] {
	return func(yield func(XYZ, []byte) bool) {
		err := r.VisitTiles(func(tileID XYZ, tileData []byte) error {
			if !yield(tileID, tileData) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}
