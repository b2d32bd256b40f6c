package grid

import (
	"errors"
	"fmt"
	"strings"
)

// Anchor is the screen position at which a target tile is pinned when navigating to it.
type Anchor int

const (
	TopLeft Anchor = iota
	TopCenter
	TopRight
	CenterLeft
	Center
	CenterRight
	BottomLeft
	BottomCenter
	BottomRight
)

var ErrInvalidAnchor = errors.New("tileview: invalid grid anchor")

var anchorNames = [...]string{
	TopLeft:      "top-left",
	TopCenter:    "top-center",
	TopRight:     "top-right",
	CenterLeft:   "center-left",
	Center:       "center",
	CenterRight:  "center-right",
	BottomLeft:   "bottom-left",
	BottomCenter: "bottom-center",
	BottomRight:  "bottom-right",
}

func (a Anchor) String() string {
	if a < 0 || int(a) >= len(anchorNames) {
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
	return anchorNames[a]
}

// ParseAnchor parses names like "top-left" or "center" (case insensitive).
func ParseAnchor(s string) (Anchor, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for a, n := range anchorNames {
		if n == name {
			return Anchor(a), nil
		}
	}
	return TopLeft, fmt.Errorf("%w: %q", ErrInvalidAnchor, s)
}

// Position returns the pixel position of the anchored tile's top-left corner.
func (a Anchor) Position(surfaceW, surfaceH, tileWidth int) (x, y int) {
	switch a {
	case TopCenter, Center, BottomCenter:
		x = (surfaceW - tileWidth) / 2
	case TopRight, CenterRight, BottomRight:
		x = surfaceW - tileWidth
	}
	switch a {
	case CenterLeft, Center, CenterRight:
		y = (surfaceH - tileWidth) / 2
	case BottomLeft, BottomCenter, BottomRight:
		y = surfaceH - tileWidth
	}
	return x, y
}
