// Package xyz reads and writes tilesets stored as a directory tree of
// individual files with paths like "/root/z/x/y.png".
package xyz

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tileview/tile"
)

var ErrInvalidPattern = errors.New("tileview: invalid file pattern")

var placeholders = [3]string{"{x}", "{y}", "{z}"}

// Pattern is a file path template with {x}, {y} and {z} placeholders.
type Pattern struct {
	template string
	regexp   *regexp.Regexp
	root     string
}

func ParsePattern(template string) (*Pattern, error) {
	for _, p := range placeholders {
		if !strings.Contains(template, p) {
			return nil, fmt.Errorf("%w: placeholder %v not found in %q", ErrInvalidPattern, p, template)
		}
	}

	expr := regexp.QuoteMeta(template)
	for _, p := range placeholders {
		name := p[1:2]
		expr = strings.ReplaceAll(expr, regexp.QuoteMeta(p), "(?P<"+name+">\\d+)")
	}
	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	p := &Pattern{template: template, regexp: re}
	path0 := p.Format(tile.XYZ{X: 0, Y: 0, Z: 0})
	path1 := p.Format(tile.XYZ{X: 1, Y: 1, Z: 1})
	for path0 != path1 {
		path0 = filepath.Dir(path0)
		path1 = filepath.Dir(path1)
	}
	p.root = path0
	return p, nil
}

func (p *Pattern) Format(t tile.XYZ) string {
	return strings.NewReplacer(
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
		"{z}", strconv.FormatUint(uint64(t.Z), 10),
	).Replace(p.template)
}

// Match extracts the tile address from a path produced by Format.
func (p *Pattern) Match(path string) (tile.XYZ, bool) {
	m := p.regexp.FindStringSubmatch(path)
	if m == nil {
		return tile.XYZ{}, false
	}
	var coords [3]uint32
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.ParseUint(m[p.regexp.SubexpIndex(name)], 10, 32)
		if err != nil {
			return tile.XYZ{}, false
		}
		coords[i] = uint32(v)
	}
	return tile.XYZ{X: coords[0], Y: coords[1], Z: coords[2]}, true
}

// Root is the deepest directory shared by all paths of the pattern.
func (p *Pattern) Root() string {
	return p.root
}

func (p *Pattern) String() string {
	return p.template
}
