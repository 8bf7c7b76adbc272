package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
	"github.com/ha1tch/flowchart-toolkit/pkg/route"
)

// view maps diagram pixels to terminal cells.
type view struct {
	cellW, cellH int
	offX, offY   int // top-left cell of the visible window
}

func (v view) toCell(p route.Point) (int, int) {
	return int(math.Round(p.X/float64(v.cellW))) - v.offX, int(math.Round(p.Y/float64(v.cellH))) - v.offY
}

func (v view) toDiagram(x, y int) flow.Position {
	return flow.Position{X: float64((x + v.offX) * v.cellW), Y: float64((y + v.offY) * v.cellH)}
}

// nodeCells returns the cell box covering n.
func (v view) nodeCells(n flow.Node) (x, y, w, h int) {
	s := n.Size()
	x, y = v.toCell(route.Point{X: n.Position.X, Y: n.Position.Y})
	x2, y2 := v.toCell(route.Point{X: n.Position.X + s.Width, Y: n.Position.Y + s.Height})
	w, h = x2-x, y2-y
	if w < 3 {
		w = 3
	}
	if h < 3 {
		h = 3
	}
	return x, y, w, h
}

// nodeAt returns the index of the topmost node covering cell (x, y).
func (v view) nodeAt(f *flow.FlowData, x, y int) int {
	for i := len(f.Nodes) - 1; i >= 0; i-- {
		nx, ny, nw, nh := v.nodeCells(f.Nodes[i])
		if x >= nx && x < nx+nw && y >= ny && y < ny+nh {
			return i
		}
	}
	return -1
}

// glyph is one connector character.
type glyph struct {
	X, Y int
	R    rune
}

type lineStyle int

const (
	lineThin lineStyle = iota
	lineDashed
	lineDouble
)

var lineRunes = map[lineStyle][2]rune{
	lineThin:   {'─', '│'},
	lineDashed: {'┄', '┆'},
	lineDouble: {'═', '║'},
}

// dir is a unit step between cells.
type dir struct{ dx, dy int }

func stepDir(ax, ay, bx, by int) dir {
	return dir{sign(bx - ax), sign(by - ay)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// corner picks the box character joining the side we came from with the
// direction we leave in.
func corner(in, out dir) rune {
	from := dir{-in.dx, -in.dy}
	has := func(d dir) bool { return from == d || out == d }
	left, right, up, down := has(dir{-1, 0}), has(dir{1, 0}), has(dir{0, -1}), has(dir{0, 1})
	switch {
	case left && down:
		return '┐'
	case left && up:
		return '┘'
	case right && down:
		return '┌'
	case right && up:
		return '└'
	case up || down:
		return '│'
	}
	return '─'
}

func arrowHead(d dir) rune {
	switch d {
	case dir{1, 0}:
		return '▶'
	case dir{-1, 0}:
		return '◀'
	case dir{0, -1}:
		return '▲'
	case dir{0, 1}:
		return '▼'
	}
	return '●'
}

// traceLine rasterizes an orthogonal polyline in cell coordinates.
func traceLine(pts [][2]int, style lineStyle, arrow bool) []glyph {
	// Drop repeated cells so zero-length legs vanish.
	var cells [][2]int
	for _, p := range pts {
		if len(cells) == 0 || cells[len(cells)-1] != p {
			cells = append(cells, p)
		}
	}
	if len(cells) < 2 {
		return nil
	}
	runes := lineRunes[style]
	var out []glyph
	var last dir
	for i := 0; i+1 < len(cells); i++ {
		a, b := cells[i], cells[i+1]
		d := stepDir(a[0], a[1], b[0], b[1])
		if i > 0 {
			out[len(out)-1].R = corner(last, d)
		}
		r := runes[0]
		if d.dx == 0 {
			r = runes[1]
		}
		x, y := a[0], a[1]
		for {
			if i == 0 || x != a[0] || y != a[1] {
				out = append(out, glyph{x, y, r})
			}
			if x == b[0] && y == b[1] {
				break
			}
			// Walk the dominant axis first so rounding skew still lands on b.
			if x != b[0] && (y == b[1] || d.dy == 0) {
				x += sign(b[0] - x)
			} else {
				y += sign(b[1] - y)
			}
		}
		last = d
	}
	if arrow {
		out[len(out)-1].R = arrowHead(last)
	}
	return out
}

// segmentCells converts a routed segment to cell points.
func (v view) segmentCells(s route.Segment) [][2]int {
	pts := make([][2]int, len(s.Points))
	for i, p := range s.Points {
		x, y := v.toCell(p)
		pts[i] = [2]int{x, y}
	}
	return pts
}

func styleFor(c route.Connector) lineStyle {
	switch c.Kind {
	case flow.KindStriped, flow.KindDoubleStriped:
		return lineDouble
	}
	for _, s := range c.Strokes {
		if s.Dash != "" && c.Kind == flow.KindMultiSegment {
			return lineDashed
		}
	}
	return lineThin
}

// connectorGlyphs rasterizes every segment of c. The arrow goes on the last
// segment when the connector carries a marker.
func (v view) connectorGlyphs(c route.Connector) []glyph {
	style := styleFor(c)
	var out []glyph
	for i, s := range c.Segments {
		arrow := c.MarkerColor != "" && i == len(c.Segments)-1
		out = append(out, traceLine(v.segmentCells(s), style, arrow)...)
	}
	return out
}

// nextSeq returns the first counter value that cannot collide with an
// existing numeric node id or "multi-N" edge id.
func nextSeq(f *flow.FlowData) int {
	top := 0
	bump := func(s string) {
		if n, err := strconv.Atoi(s); err == nil && n > top {
			top = n
		}
	}
	for _, n := range f.Nodes {
		bump(n.ID)
	}
	for _, e := range f.Edges {
		bump(strings.TrimPrefix(e.ID, "multi-"))
	}
	return top + 1
}

var edgeKinds = []flow.EdgeKind{flow.KindSimple, flow.KindCurved, flow.KindStriped, flow.KindDoubleStriped}

func nextKind(k flow.EdgeKind) flow.EdgeKind {
	for i, kk := range edgeKinds {
		if kk == k {
			return edgeKinds[(i+1)%len(edgeKinds)]
		}
	}
	return edgeKinds[0]
}
