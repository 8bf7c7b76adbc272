// Geometric primitives for connector routing.
// Points, rectangles and node anchors in diagram pixel space.

package route

import (
	"math"
	"strconv"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

// Point represents a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale multiplies both coordinates by k.
func (p Point) Scale(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

// Len returns the euclidean length of p as a vector.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Mid returns the midpoint of p and q.
func (p Point) Mid(q Point) Point {
	return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2}
}

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 {
	return p.Sub(q).Len()
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y float64 // Center
	W, H float64 // Full width and height
}

// Bounds returns the bounding box of a node using its measured size.
func Bounds(n flow.Node) Rect {
	s := n.Size()
	return Rect{
		X: n.Position.X + s.Width/2,
		Y: n.Position.Y + s.Height/2,
		W: s.Width,
		H: s.Height,
	}
}

// Center returns the centre of a node.
func Center(n flow.Node) Point {
	c := n.Center()
	return Point{c.X, c.Y}
}

// AnchorPoint returns the attachment point of a handle on a node's bounding box:
// the middle of the named side.
func AnchorPoint(n flow.Node, h flow.Handle) Point {
	s := n.Size()
	p := Point{n.Position.X + s.Width/2, n.Position.Y + s.Height/2}
	switch h {
	case flow.HandleLeft:
		p.X = n.Position.X
	case flow.HandleRight:
		p.X = n.Position.X + s.Width
	case flow.HandleTop:
		p.Y = n.Position.Y
	case flow.HandleBottom:
		p.Y = n.Position.Y + s.Height
	}
	return p
}

// Outward returns the unit vector pointing away from a node through h.
func Outward(h flow.Handle) Point {
	switch h {
	case flow.HandleLeft:
		return Point{-1, 0}
	case flow.HandleRight:
		return Point{1, 0}
	case flow.HandleTop:
		return Point{0, -1}
	case flow.HandleBottom:
		return Point{0, 1}
	}
	return Point{}
}

// RectOverlap returns the overlap area between two rectangles.
// Returns 0 if they don't overlap.
func RectOverlap(a, b Rect) float64 {
	overlapX := (a.W/2 + b.W/2) - math.Abs(a.X-b.X)
	overlapY := (a.H/2 + b.H/2) - math.Abs(a.Y-b.Y)
	if overlapX <= 0 || overlapY <= 0 {
		return 0
	}
	return overlapX * overlapY
}

// formatCoord renders a coordinate with the shortest representation that
// round-trips, so identical inputs always produce identical path strings.
func formatCoord(v float64) string {
	if v == 0 {
		v = 0 // normalizes -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
