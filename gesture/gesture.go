// Package gesture turns raw drag and pinch input into view state updates.
package gesture

import (
	"github.com/eak1mov/go-tileview/render"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/eak1mov/go-tileview/view"
)

// Notifier receives the change notifications the tile supplier needs.
type Notifier interface {
	NotifyRangeChanged(r tile.Range)
	NotifyZoomChanged(zoom float64)
}

// Translator applies gestures to the active view state. A nil state or a nil
// Rerender hook is allowed.
type Translator struct {
	States   render.StateSource
	Notifier Notifier

	// Rerender is called after every zoom change.
	Rerender func()
}

// Drag applies a drag distance, measured as previous minus current pointer position.
// Dragging the pointer right (negative distance) moves the content right.
func (tr *Translator) Drag(distanceX, distanceY float64) {
	st := tr.States.State()
	if st == nil {
		return
	}
	if st.ApplyOffsetRelative(-int(distanceX), -int(distanceY)) {
		if r, ok := st.VisibleRange(); ok {
			tr.Notifier.NotifyRangeChanged(r)
		}
	}
}

// Pinch multiplies the zoom factor by scale and returns the clamped zoom.
// A viewport that is not configured stays at MinZoom.
func (tr *Translator) Pinch(scale float64) float64 {
	st := tr.States.State()
	if st == nil {
		return view.MinZoom
	}
	zoom := st.UpdateZoom(scale)
	tr.Notifier.NotifyZoomChanged(zoom)
	if tr.Rerender != nil {
		tr.Rerender()
	}
	return zoom
}
